package event

type Type string

const (
	ListingCreatedEvent Type = "listing.created"
	ListingSoldEvent    Type = "listing.sold"
	ListingRetiredEvent Type = "listing.retired"
	ConfigUpdatedEvent  Type = "config.updated"
)

var ListingEvents = []Type{ListingCreatedEvent, ListingSoldEvent, ListingRetiredEvent}

var AllEvents = []Type{ListingCreatedEvent, ListingSoldEvent, ListingRetiredEvent, ConfigUpdatedEvent}
