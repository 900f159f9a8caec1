package events

// Topic constants for domain events emitted by the service. They double as asynq task types.
const (
	TopicBudgetCreated = "budget:created"
	TopicBudgetDeleted = "budget:deleted"
)

// DefaultTopics returns the topics the worker subscribes to.
func DefaultTopics() []string {
	return []string{
		TopicBudgetCreated,
		TopicBudgetDeleted,
	}
}
