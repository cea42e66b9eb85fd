package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ilia01/ticketdesk/internal/config"
	"github.com/Ilia01/ticketdesk/internal/models"
	"github.com/Ilia01/ticketdesk/internal/tickets"
	"github.com/Ilia01/ticketdesk/internal/utils"
)

const cardWidth = 72

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1).
			Width(cardWidth)

	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	cardLabelStyle = lipgloss.NewStyle().Faint(true).Width(12)
)

func colorStatus(s models.Status) string {
	switch s {
	case models.StatusOpen:
		return utils.Blue(string(s))
	case models.StatusInProgress:
		return utils.Yellow(string(s))
	case models.StatusResolved:
		return utils.Green(string(s))
	case models.StatusClosed:
		return utils.Dim(string(s))
	}
	return string(s)
}

func colorPriority(p models.Priority) string {
	switch p {
	case models.PriorityCritical:
		return utils.Red(utils.Bold(string(p)))
	case models.PriorityHigh:
		return utils.Red(string(p))
	case models.PriorityMedium:
		return utils.Yellow(string(p))
	}
	return utils.Dim(string(p))
}

func printTicketList(list []models.Ticket) {
	for _, t := range list {
		fmt.Printf("  %s  %-11s  %-8s  %s\n",
			utils.Cyan(utils.Bold(fmt.Sprintf("#%-5d", t.ID))),
			colorStatus(t.Status),
			colorPriority(t.Priority),
			utils.BrightWhite(truncate(t.Title, 50)),
		)
		meta := []string{}
		if t.ApplicationName != "" {
			meta = append(meta, t.ApplicationName)
		}
		if n := len(t.Assignees); n > 0 {
			meta = append(meta, fmt.Sprintf("%d assignee(s)", n))
		}
		if t.DeadLine != "" {
			meta = append(meta, "due "+t.DeadLine)
		}
		if len(meta) > 0 {
			fmt.Printf("          %s\n", utils.Dim(strings.Join(meta, " · ")))
		}
	}
}

// renderTicket draws the detail card shown by "tickets show" and after a save.
func renderTicket(t models.Ticket) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, cardLabelStyle.Render(label), value)
	}

	lines := []string{
		cardTitleStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)),
		"",
		row("Status", colorStatus(t.Status)),
		row("Priority", colorPriority(t.Priority)),
	}
	if t.ApplicationName != "" {
		lines = append(lines, row("App", t.ApplicationName))
	}
	if t.CreatedBy != "" {
		lines = append(lines, row("Created by", t.CreatedBy))
	}
	if t.CreatedAt != "" {
		lines = append(lines, row("Created", t.CreatedAt))
	}
	if t.DeadLine != "" {
		lines = append(lines, row("Deadline", t.DeadLine))
	}

	if len(t.Assignees) == 0 {
		lines = append(lines, row("Assignees", utils.Dim("none")))
	} else {
		for i, a := range t.Assignees {
			label := ""
			if i == 0 {
				label = "Assignees"
			}
			lines = append(lines, row(label, describeAssignee(a)))
		}
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		lines = append(lines, "", desc)
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}

func describeAssignee(a models.Assignee) string {
	kind := "user"
	if a.Project != nil {
		kind = "project"
	}
	out := fmt.Sprintf("%s %s %s", utils.Dim(fmt.Sprintf("[%d]", a.ID)), a.Label(), utils.Dim("("+kind+")"))
	if a.AssignedBy != nil && a.AssignedBy.Email != "" {
		out += utils.Dim(" by " + a.AssignedBy.Email)
	}
	return out
}

func printComments(list []models.Comment) {
	fmt.Println(utils.Cyan(utils.Bold(fmt.Sprintf("Comments (%d)", len(list)))))
	if len(list) == 0 {
		fmt.Println(utils.Dim("  No comments yet"))
		return
	}
	for _, c := range list {
		author := "unknown"
		if c.User != nil && c.User.Email != "" {
			author = c.User.Email
		}
		header := utils.Bold(author)
		if c.CreatedAt != "" {
			header += " " + utils.Dim(c.CreatedAt)
		}
		if c.AIGenerated {
			header += " " + utils.Magenta("[AI]")
		}
		fmt.Println()
		fmt.Printf("  %s\n", header)
		for _, line := range strings.Split(c.Comment, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
}

func printPlan(plan tickets.Plan) {
	fmt.Println(utils.Cyan(utils.Bold(fmt.Sprintf("Changes for #%d", plan.TicketID))))
	if plan.StatusChanged() {
		fmt.Printf("  %s status → %s\n", utils.Yellow("~"), colorStatus(plan.NewStatus))
	}
	for _, a := range plan.Changes.Added {
		fmt.Printf("  %s assign %s\n", utils.Green("+"), describeDraft(a))
	}
	for _, a := range plan.Changes.Removed {
		fmt.Printf("  %s remove %s\n", utils.Red("-"), describeAssignee(a))
	}
}

func describeDraft(a tickets.DraftAssignee) string {
	if a.UserID != "" {
		return "user " + a.UserID
	}
	return "project " + a.ProjectID
}

func printConfig(s *config.Settings) {
	fmt.Println(utils.Cyan(utils.Bold("Current Configuration")))
	fmt.Println()

	fmt.Println(utils.Bold("API"))
	fmt.Printf("  URL:     %s\n", utils.BrightWhite(s.API.URL))
	fmt.Printf("  Timeout: %s\n", s.API.Timeout)
	fmt.Println()

	fmt.Println(utils.Bold("Web"))
	webURL := s.Web.URL
	if webURL == "" {
		webURL = utils.Dim("(not set)")
	}
	fmt.Printf("  URL: %s\n", webURL)
	fmt.Println()

	fmt.Println(utils.Bold("Preferences"))
	scope := s.Preferences.DefaultScope
	if scope == "" {
		scope = utils.Dim("(by role)")
	}
	fmt.Printf("  Default scope: %s\n", scope)
	fmt.Printf("  No color:      %v\n", s.Preferences.NoColor)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
