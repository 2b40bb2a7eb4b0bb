package budget

import "context"

// State is the read-only snapshot published to the UI after every command
// and every recomputation.
type State struct {
	Wallets            []Wallet
	TotalLimit         Money
	TotalSpent         Money
	TotalBalance       Money
	OverBudgetWallets  []string
	Progress           map[string]int
	IsLoading          bool
	Error              string
	SelectedPeriodDays int
}

// Snapshot returns the current published state.
func (service *Service) Snapshot() State {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.state
}

// Subscribe registers a state listener. The channel receives the latest
// snapshot after each publish; a slow listener is overwritten, never blocked on.
func (service *Service) Subscribe() <-chan State {
	subscriber := make(chan State, 1)
	service.mu.Lock()
	service.subscribers = append(service.subscribers, subscriber)
	service.mu.Unlock()
	return subscriber
}

// ClearError resets the published error message.
func (service *Service) ClearError() {
	service.mu.Lock()
	service.state.Error = ""
	service.publishLocked()
	service.mu.Unlock()
}

// Refresh reloads wallets and aggregates into the published state.
func (service *Service) Refresh(ctx context.Context) error {
	service.beginLoading()
	return service.conclude(ctx, nil)
}

func (service *Service) beginLoading() {
	service.mu.Lock()
	service.state.IsLoading = true
	service.publishLocked()
	service.mu.Unlock()
}

// conclude finishes every command: reload the wallet list, recompute
// aggregates and progress, record the error field, publish. The operation
// error wins over a reload error; success clears the field.
func (service *Service) conclude(ctx context.Context, operationError error) error {
	wallets, loadError := service.wallets.ListWallets(ctx)
	var progress map[string]int
	if loadError == nil {
		progress, loadError = service.walletProgress(ctx, wallets)
	}

	service.mu.Lock()
	service.state.IsLoading = false
	if loadError == nil {
		service.state.Wallets = wallets
		service.state.Progress = progress
		service.state.TotalLimit, service.state.TotalSpent, service.state.TotalBalance = sumWallets(wallets)
		service.state.OverBudgetWallets = overBudgetNames(wallets)
	}
	switch {
	case operationError != nil:
		service.state.Error = operationError.Error()
	case loadError != nil:
		service.state.Error = loadError.Error()
	default:
		service.state.Error = ""
	}
	service.publishLocked()
	service.mu.Unlock()

	if operationError != nil {
		return operationError
	}
	return loadError
}

func (service *Service) publishLocked() {
	state := service.state
	for _, subscriber := range service.subscribers {
		select {
		case subscriber <- state:
		default:
			select {
			case <-subscriber:
			default:
			}
			select {
			case subscriber <- state:
			default:
			}
		}
	}
}

// walletProgress computes the display percentage per wallet: spent/limit for
// budget wallets, current/target from the goal collaborator for goal wallets.
func (service *Service) walletProgress(ctx context.Context, wallets []Wallet) (map[string]int, error) {
	progress := make(map[string]int, len(wallets))
	for _, wallet := range wallets {
		if wallet.Type != WalletTypeGoal {
			progress[wallet.ID.String()] = wallet.PercentUsed()
			continue
		}
		current, target, err := service.goals.GoalProgress(ctx, wallet)
		if err != nil {
			return nil, WrapError("state", "goal_progress", "lookup", err)
		}
		progress[wallet.ID.String()] = percentOf(current, target)
	}
	return progress, nil
}

func sumWallets(wallets []Wallet) (totalLimit Money, totalSpent Money, totalBalance Money) {
	totalLimit, totalSpent, totalBalance = ZeroMoney(), ZeroMoney(), ZeroMoney()
	for _, wallet := range wallets {
		totalLimit = totalLimit.Add(wallet.Limit)
		totalSpent = totalSpent.Add(wallet.Spent)
		totalBalance = totalBalance.Add(wallet.Balance)
	}
	return totalLimit, totalSpent, totalBalance
}

func overBudgetNames(wallets []Wallet) []string {
	names := make([]string, 0)
	for _, wallet := range wallets {
		if wallet.OverBudget() {
			names = append(names, wallet.Name)
		}
	}
	return names
}

// balanceGoalSource is the default goal collaborator: progress is measured
// as allocated balance against the wallet limit.
type balanceGoalSource struct{}

func (balanceGoalSource) GoalProgress(_ context.Context, wallet Wallet) (Money, Money, error) {
	return wallet.Balance, wallet.Limit, nil
}
