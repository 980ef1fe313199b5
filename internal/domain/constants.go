package domain

const (
	UserTypeResident = "resident"
	UserTypeStaff    = "staff"
)

const (
	ResidentOwner  = "owner"
	ResidentTenant = "tenant"
	ResidentFamily = "family"
)

// Staff roles
const (
	RoleFacilityManager       = "facility_manager"
	RoleAccountant            = "accountant"
	RoleSecurityHead          = "security_head"
	RoleMaintenanceSupervisor = "maintenance_supervisor"
	RoleElectrician           = "electrician"
	RolePlumber               = "plumber"
	RoleCleaner               = "cleaner"
	RoleGardener              = "gardener"
)

// Maintenance request statuses, in workflow order.
const (
	TicketSubmitted    = "submitted"
	TicketAcknowledged = "acknowledged"
	TicketAssigned     = "assigned"
	TicketInProgress   = "in_progress"
	TicketResolved     = "resolved"
	TicketClosed       = "closed"
	TicketCancelled    = "cancelled"
)

// Maintenance priorities
const (
	PriorityLow       = 1
	PriorityMedium    = 2
	PriorityHigh      = 3
	PriorityEmergency = 4
)

// Booking statuses
const (
	BookingPending   = "pending"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Notification statuses
const (
	NotificationSent      = "sent"
	NotificationDelivered = "delivered"
	NotificationRead      = "read"
	NotificationFailed    = "failed"
)

// Kinds of entities a notification can point back to. Stored as a plain
// enum column and resolved with a switch, never by dynamic model lookup.
const (
	RelatedAnnouncement = "announcement"
	RelatedMaintenance  = "maintenance_request"
	RelatedBooking      = "booking"
	RelatedEvent        = "event"
	RelatedMarketplace  = "marketplace_item"
)

// RelatedRef is a typed reference to the entity a notification is about.
type RelatedRef struct {
	Kind string
	ID   uint
}

// Marketplace item types and statuses
const (
	ItemSell        = "sell"
	ItemBuy         = "buy"
	ItemService     = "service"
	ItemNeedService = "need_service"
	ItemLost        = "lost"
	ItemFound       = "found"
)

const (
	ItemStatusActive  = "active"
	ItemStatusSold    = "sold"
	ItemStatusExpired = "expired"
	ItemStatusRemoved = "removed"
)

// Event types
const (
	EventMeeting     = "meeting"
	EventMaintenance = "maintenance"
	EventSocial      = "social"
	EventFestival    = "festival"
	EventOther       = "other"
)

// RSVP responses
const (
	RSVPYes   = "yes"
	RSVPNo    = "no"
	RSVPMaybe = "maybe"
)
