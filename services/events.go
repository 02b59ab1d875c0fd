package services

import "fanfi-engagement-service/models"

// ActionEvent is the typed event published by any service whose action can
// satisfy a quest. The quest evaluator subscribes to these instead of being
// called from hard-coded route sites, so new qualifying actions only need a
// new publisher.
type ActionEvent struct {
	Wallet    string
	Category  models.QuestCategory
	Kind      models.RewardAction
	Magnitude int64 // amount staked, minutes watched, occurrence count...
	SourceID  string
}

// ActionSink consumes action events. QuestService implements it; tests can
// substitute their own.
type ActionSink interface {
	HandleAction(ev ActionEvent) error
}
