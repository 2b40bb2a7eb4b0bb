package budget

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing budget operation.
type OperationLog struct {
	Operation    string
	WalletID     WalletID
	PeerWalletID WalletID
	Amount       Money
	Status       string
	Error        error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithGoalProgressSource replaces the default goal-progress collaborator.
func WithGoalProgressSource(source GoalProgressSource) ServiceOption {
	return func(service *Service) {
		service.goals = source
	}
}
