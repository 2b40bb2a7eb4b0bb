package budget

const (
	operationAddWallet    = "add_wallet"
	operationUpdateWallet = "update_wallet"
	operationDeleteWallet = "delete_wallet"
	operationDistribute   = "distribute_income"
	operationSpend        = "spend"
	operationTransfer     = "transfer"
	operationSetPeriod    = "set_period_duration"
	operationResetPeriod  = "reset_period"
	operationResetAll     = "reset_all_periods"
	operationRecompute    = "recompute_spent"
	operationCleanupSeeds = "cleanup_seed_wallets"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	centScale = 2
)

// Seed wallet names removed by the one-time startup cleanup when they carry
// no linked categories.
var seedWalletNames = map[string]struct{}{
	"Test":   {},
	"Demo":   {},
	"Sample": {},
}
