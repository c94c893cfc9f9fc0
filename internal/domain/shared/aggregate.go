package shared

// AggregateRoot is an entity that records the domain events it raises
type AggregateRoot struct {
	BaseEntity
	events []DomainEvent
}

// NewAggregateRoot creates a new aggregate root with a generated ID
func NewAggregateRoot() AggregateRoot {
	return AggregateRoot{BaseEntity: NewBaseEntity()}
}

// AddDomainEvent records a domain event
func (a *AggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// GetDomainEvents returns the recorded events
func (a *AggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

// ClearDomainEvents drops the recorded events, typically after publishing
func (a *AggregateRoot) ClearDomainEvents() {
	a.events = nil
}
