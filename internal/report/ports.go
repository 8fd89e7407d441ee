package report

import "context"

// SettlementWriter is the outbound port for exported settlement reports.
type SettlementWriter interface {
	AppendSettlement(ctx context.Context, r Settlement) error
}
