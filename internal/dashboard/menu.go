package dashboard

import "github.com/servicedesk/servicedesk/internal/shared"

// MenuAction is a single entry on a menu card.
type MenuAction struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Path       string `json:"path"`
	Company    string `json:"company"`
	Permission string `json:"-"`
	// HideOnDashboard keeps the action in the navigation but off the card face.
	HideOnDashboard bool `json:"-"`
}

// MenuCard groups actions under one heading.
type MenuCard struct {
	Key              string       `json:"key"`
	Title            string       `json:"title"`
	Actions          []MenuAction `json:"actions"`
	DashboardActions []MenuAction `json:"dashboard_actions"`
}

// DefaultMenu lists the screens of the service desk.
func DefaultMenu() []MenuCard {
	return []MenuCard{
		{Key: "stock", Title: "Stock", Actions: []MenuAction{
			{Key: "stock_update", Label: "Stock Update", Path: "/stock/update", Company: SelectorAll, Permission: shared.PermStockEdit},
			{Key: "stock_indent", Label: "Create Indent", Path: "/stock/indents", Company: SelectorAll, Permission: shared.PermStockEdit},
			{Key: "stock_enquiry", Label: "Stock Enquiry", Path: "/stock", Company: SelectorAll, Permission: shared.PermStockView},
		}},
		{Key: "grc", Title: "GRC", Actions: []MenuAction{
			{Key: "grc_upload", Label: "Upload GRC", Path: "/grc/upload", Company: shared.CompanyCGCEL, Permission: shared.PermGRCUpload, HideOnDashboard: true},
			{Key: "grc_receive", Label: "Receive Spares", Path: "/grc/receive", Company: shared.CompanyCGCEL, Permission: shared.PermGRCEdit},
			{Key: "grc_return", Label: "Return Spares", Path: "/grc/returns", Company: shared.CompanyCGCEL, Permission: shared.PermGRCEdit},
			{Key: "grc_enquiry", Label: "GRC Enquiry", Path: "/grc/enquiry", Company: shared.CompanyCGCEL, Permission: shared.PermGRCView},
		}},
		{Key: "complaints", Title: "Complaints", Actions: []MenuAction{
			{Key: "complaint_pending", Label: "Pending Complaints", Path: "/complaints/pending", Company: SelectorAll, Permission: shared.PermComplaintsView},
		}},
		{Key: "employees", Title: "Employees", Actions: []MenuAction{
			{Key: "employee_create", Label: "Create Employee", Path: "/employees", Company: SelectorAll, Permission: shared.PermEmployeesEdit},
		}},
	}
}

// FilterMenuByCompany keeps the actions available to the selected company.
// Under ALL every action is kept; otherwise actions tagged for that company or
// for ALL are kept. Cards left without actions are dropped.
func FilterMenuByCompany(cards []MenuCard, company string) []MenuCard {
	return filterMenu(cards, func(a MenuAction) bool {
		return company == SelectorAll || a.Company == company || a.Company == SelectorAll
	})
}

// FilterMenuByPermissions keeps actions the caller may open.
func FilterMenuByPermissions(cards []MenuCard, granted []string) []MenuCard {
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	return filterMenu(cards, func(a MenuAction) bool {
		if a.Permission == "" {
			return true
		}
		_, ok := set[a.Permission]
		return ok
	})
}

func filterMenu(cards []MenuCard, keep func(MenuAction) bool) []MenuCard {
	out := make([]MenuCard, 0, len(cards))
	for _, card := range cards {
		actions := make([]MenuAction, 0, len(card.Actions))
		for _, a := range card.Actions {
			if keep(a) {
				actions = append(actions, a)
			}
		}
		if len(actions) == 0 {
			continue
		}
		onDashboard := make([]MenuAction, 0, len(actions))
		for _, a := range actions {
			if !a.HideOnDashboard {
				onDashboard = append(onDashboard, a)
			}
		}
		out = append(out, MenuCard{Key: card.Key, Title: card.Title, Actions: actions, DashboardActions: onDashboard})
	}
	return out
}
