package handler

import "sbir-marketplace/internal/service"

type Handlers struct {
	Listing       *ListingHandler
	Moderation    *ModerationHandler
	Audit         *AuditHandler
	ChangeRequest *ChangeRequestHandler
	Dashboard     *DashboardHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Listing:       NewListingHandler(services.Listing),
		Moderation:    NewModerationHandler(services.Moderation, services.Listing),
		Audit:         NewAuditHandler(services.Audit),
		ChangeRequest: NewChangeRequestHandler(services.ChangeRequest),
		Dashboard:     NewDashboardHandler(services.Dashboard),
	}
}
