package service

import "go-inventory-po/internal/model"

// Notifier receives stock events after their transaction has committed.
type Notifier interface {
	Notify(event model.StockEvent)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(model.StockEvent) {}
