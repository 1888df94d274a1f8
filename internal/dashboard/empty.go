package dashboard

import "github.com/Skotchmaster/product_dashboard/internal/models"

// EmptyState is the placeholder shown when a tab has no records.
type EmptyState struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionLabel string `json:"action_label,omitempty"`
}

func EmptyStateFor(tab models.Tab) EmptyState {
	if tab.Published() {
		return EmptyState{
			Title:       "No Published Products",
			Description: "Your Published Products will appear here\nCreate your first product to publish",
			ActionLabel: "Add your Products",
		}
	}
	return EmptyState{
		Title:       "No Unpublished Products",
		Description: "You have no unpublished drafts.",
	}
}
