package http

import (
	"math"
	"net/http"

	"nbbang/internal/core"
	"nbbang/internal/metrics"
)

type settlementRow struct {
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	UpFrontPayment int    `json:"upFrontPayment"`
	Share          int    `json:"share"`
	Net            int    `json:"net"`
}

type settlementView struct {
	MeetTitle  string          `json:"meetTitle"`
	TotalMoney int             `json:"totalMoney"`
	TotalUse   int             `json:"totalUse"`
	HaveMoney  int             `json:"haveMoney"`
	Rows       []settlementRow `json:"rows"`
}

// handleSettlement returns per-person settlement positions. Shares are the
// rounded balances; unnamed draft participants carry nothing and are omitted.
func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	entryCode := r.PathValue("entryCode")

	sess, err := s.loadSession(r.Context(), entryCode)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	totals := sess.Totals()
	balances := sess.Balances()

	view := settlementView{
		MeetTitle:  sess.Title(),
		TotalMoney: totals.TotalMoney,
		TotalUse:   totals.TotalUse,
		HaveMoney:  totals.HaveMoney,
		Rows:       []settlementRow{},
	}
	for _, p := range core.ActivePeople(sess.People()) {
		share := int(math.Round(balances[p.UserID]))
		view.Rows = append(view.Rows, settlementRow{
			UserID:         p.UserID,
			UserName:       p.UserName,
			UpFrontPayment: p.UpFrontPayment,
			Share:          share,
			Net:            p.UpFrontPayment - share,
		})
	}

	metrics.SettlementsComputed.Inc()
	NewJSONResponse().Payload(view).Write(w)
}

type userSettlementView struct {
	UserID   string                  `json:"userId"`
	UserName string                  `json:"userName"`
	Share    int                     `json:"share"`
	Net      int                     `json:"net"`
	Rows     []core.ExpenseDetailRow `json:"rows"`
}

// handleUserSettlement breaks one person's share down into the contributions
// that produced it.
func (s *Server) handleUserSettlement(w http.ResponseWriter, r *http.Request) {
	entryCode := r.PathValue("entryCode")
	userID := r.PathValue("userId")

	sess, err := s.loadSession(r.Context(), entryCode)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	var person core.Person
	found := false
	for _, p := range sess.People() {
		if p.UserID == userID {
			person = p
			found = true
			break
		}
	}
	if !found {
		writeDomainError(r.Context(), w, core.ErrPersonNotFound)
		return
	}

	balances := sess.Balances()
	share := int(math.Round(balances[person.UserID]))

	NewJSONResponse().Payload(userSettlementView{
		UserID:   person.UserID,
		UserName: person.UserName,
		Share:    share,
		Net:      person.UpFrontPayment - share,
		Rows:     sess.UserDetails(person.UserID),
	}).Write(w)
}
