// Package seed holds the static default checklist template used when an
// organization is provisioned or a template is reset.
package seed

// TaskDef describes one task of the default template.
type TaskDef struct {
	Title       string
	Description string
	Link        string
	IsBuddyTask bool
}

// CategoryDef describes one category of the default template. Category
// and task order follow slice position.
type CategoryDef struct {
	Name            string
	IsBuddyCategory bool
	Tasks           []TaskDef
}

// DefaultTemplate returns the full default checklist, regular and buddy
// categories combined.
func DefaultTemplate() []CategoryDef {
	return append(defaultRegularCategories(), DefaultBuddyTemplate()...)
}

// DefaultBuddyTemplate returns only the buddy subset of the default
// checklist, used by the buddy-only reset.
func DefaultBuddyTemplate() []CategoryDef {
	return []CategoryDef{
		{
			Name:            "Buddy preparations",
			IsBuddyCategory: true,
			Tasks: []TaskDef{
				{Title: "Contact the new employee before their first day", Description: "Send a short welcome message and introduce yourself as their buddy.", IsBuddyTask: true},
				{Title: "Prepare the workplace", Description: "Make sure desk, chair and peripherals are ready before arrival.", IsBuddyTask: true},
				{Title: "Order access badge", Description: "Request an access badge so it is ready on day one.", IsBuddyTask: true},
				{Title: "Plan the first week", Description: "Book intro meetings with the closest team members.", IsBuddyTask: true},
			},
		},
		{
			Name:            "Buddy first day",
			IsBuddyCategory: true,
			Tasks: []TaskDef{
				{Title: "Meet at the entrance", Description: "Welcome the new employee and show them to their desk.", IsBuddyTask: true},
				{Title: "Office tour", Description: "Show meeting rooms, kitchen, printers and emergency exits.", IsBuddyTask: true},
				{Title: "Lunch together", Description: "Have lunch with the new employee and a few colleagues.", IsBuddyTask: true},
			},
		},
	}
}

func defaultRegularCategories() []CategoryDef {
	return []CategoryDef{
		{
			Name: "Before first day",
			Tasks: []TaskDef{
				{Title: "Sign employment contract", Description: "Return the signed contract to HR."},
				{Title: "Submit tax and bank details", Description: "Fill in payroll information in the HR portal."},
				{Title: "Read the employee handbook", Description: "Familiarize yourself with policies and benefits."},
			},
		},
		{
			Name: "First day",
			Tasks: []TaskDef{
				{Title: "Pick up your computer", Description: "Collect laptop and accessories from IT."},
				{Title: "Set up accounts", Description: "Activate email, chat and VPN access."},
				{Title: "Meet your manager", Description: "Walk through expectations for the first weeks."},
			},
		},
		{
			Name: "First week",
			Tasks: []TaskDef{
				{Title: "Complete security training", Description: "Mandatory security awareness course.", Link: "https://intranet.example.com/security-training"},
				{Title: "Meet the team", Description: "One-on-one introductions with each team member."},
				{Title: "Set up development environment", Description: "Follow the team's onboarding guide."},
			},
		},
		{
			Name: "First month",
			Tasks: []TaskDef{
				{Title: "Review goals with manager", Description: "Agree on goals for the probation period."},
				{Title: "Book a follow-up with HR", Description: "Check in on how onboarding is going."},
			},
		},
	}
}
