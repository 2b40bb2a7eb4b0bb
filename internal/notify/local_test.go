package notify_test

import (
	"context"
	"testing"

	"github.com/MarkoPoloResearchLab/budget/internal/notify"
	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
	"go.uber.org/zap"
)

func TestLocalNotifierDeliversChanges(t *testing.T) {
	notifier := notify.NewLocalNotifier(zap.NewNop())
	defer notifier.Close()

	change := budget.TransactionChange{Action: "added", TransactionID: "t1"}
	if err := notifier.PublishTransactionChange(context.Background(), change); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	received := <-notifier.Changes()
	if received != change {
		t.Fatalf("expected %+v, received %+v", change, received)
	}
}

func TestLocalNotifierDropsWhenBufferFull(t *testing.T) {
	notifier := notify.NewLocalNotifier(zap.NewNop())
	defer notifier.Close()

	for index := 0; index < 200; index++ {
		if err := notifier.PublishTransactionChange(context.Background(), budget.TransactionChange{Action: "added"}); err != nil {
			t.Fatalf("publish %d failed: %v", index, err)
		}
	}
}

func TestLocalNotifierCloseStopsStream(t *testing.T) {
	notifier := notify.NewLocalNotifier(zap.NewNop())
	if err := notifier.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, open := <-notifier.Changes(); open {
		t.Fatalf("expected closed stream")
	}
	if err := notifier.PublishTransactionChange(context.Background(), budget.TransactionChange{}); err != nil {
		t.Fatalf("publish after close must be a no-op: %v", err)
	}
}

func TestTransactionChangeMessageRoundTrip(t *testing.T) {
	message := notify.NewTransactionChangeMessage("deleted", "t9")
	raw, err := message.ToJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	decoded, err := notify.TransactionChangeMessageFromJSON(raw)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Action != "deleted" || decoded.TransactionID != "t9" {
		t.Fatalf("unexpected message %+v", decoded)
	}
	if _, err := notify.TransactionChangeMessageFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
