package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ilia01/ticketdesk/internal/api"
	"github.com/Ilia01/ticketdesk/internal/comments"
	"github.com/Ilia01/ticketdesk/internal/config"
	"github.com/Ilia01/ticketdesk/internal/models"
	"github.com/Ilia01/ticketdesk/internal/session"
	"github.com/Ilia01/ticketdesk/internal/tickets"
	"github.com/Ilia01/ticketdesk/internal/utils"
)

type deskService interface {
	tickets.Remote
	comments.Remote
	CreateTicket(ctx context.Context, t models.NewTicket) (*models.Ticket, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	ListAllUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role models.Role) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListMyProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, name string, members []models.User) (*models.Project, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	ListMyApplications(ctx context.Context) ([]models.Application, error)
	OwnApplication(ctx context.Context, appID int64) error
	AddApplication(ctx context.Context, name string) error
}

type authService interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Signup(ctx context.Context, email, password string) (*session.Session, error)
}

var (
	apiFactory = func(settings *config.Settings, sess *session.Session) deskService {
		return api.NewClient(settings.API.URL, sess, api.WithTimeout(settings.API.Timeout), api.WithLogger(log))
	}

	authFactory = func(settings *config.Settings) authService {
		return api.NewClient(settings.API.URL, nil, api.WithTimeout(settings.API.Timeout), api.WithLogger(log))
	}

	sessionStoreFactory = session.DefaultStore

	passwordPrompt = utils.PromptPassword
)

type scopeOptions struct {
	Scope     string
	ProjectID int64
}

type listOptions struct {
	Scope  scopeOptions
	Status string
	JSON   bool
}

type createOptions struct {
	Title         string
	Description   string
	ApplicationID int64
	Priority      string
	DeadLine      string
}

type editOptions struct {
	Scope       scopeOptions
	TicketID    int64
	Status      string
	AddUsers    []string
	AddProjects []string
	Remove      []int64
	DryRun      bool
}

func handleInit() error {
	fmt.Println(utils.Cyan(utils.Bold("Ticket Desk Configuration Setup")))
	fmt.Println()

	current, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return err
		}
		current = config.Default()
	}

	apiURL, err := utils.PromptWithDefault("API URL", current.API.URL)
	if err != nil {
		return err
	}
	webURL, err := utils.PromptWithDefault("Dashboard URL (optional)", current.Web.URL)
	if err != nil {
		return err
	}
	scope, err := utils.PromptWithDefault("Default ticket scope (empty = by role)", current.Preferences.DefaultScope)
	if err != nil {
		return err
	}
	if scope = strings.TrimSpace(scope); scope != "" {
		if _, err := models.ParseScope(scope); err != nil {
			return err
		}
	}

	current.API.URL = strings.TrimSpace(apiURL)
	current.Web.URL = strings.TrimSpace(webURL)
	current.Preferences.DefaultScope = scope

	if err := current.Save(); err != nil {
		return err
	}

	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(utils.Green(utils.Bold("Configuration saved!")))
	fmt.Printf("  Location: %s\n\n", utils.BrightWhite(path))
	fmt.Println(utils.Dim("Run 'ticketdesk login' to start a session"))
	return nil
}

func handleLogin(ctx context.Context, email string) error {
	return authenticate(ctx, email, false)
}

func handleSignup(ctx context.Context, email string) error {
	return authenticate(ctx, email, true)
}

func authenticate(ctx context.Context, email string, signup bool) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if strings.TrimSpace(email) == "" {
		if email, err = utils.Prompt("Email"); err != nil {
			return err
		}
	}
	password, err := passwordPrompt("Password")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	client := authFactory(settings)
	var sess *session.Session
	if signup {
		sess, err = client.Signup(ctx, email, password)
	} else {
		sess, err = client.Login(ctx, email, password)
	}
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	store, err := sessionStoreFactory()
	if err != nil {
		return err
	}
	if err := store.Save(sess); err != nil {
		return err
	}

	fmt.Println(utils.Green(utils.Bold(fmt.Sprintf("✓ Logged in as %s", sess.User.Email))))
	fmt.Printf("  %s %s\n", utils.Bold("Roles:"), utils.BrightWhite(formatRoles(sess.User.Roles)))
	return nil
}

func handleLogout() error {
	store, err := sessionStoreFactory()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println(utils.Green("✓ Logged out"))
	return nil
}

func handleWhoami() error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	fmt.Printf("  %s %s\n", utils.Bold("Email:"), utils.BrightWhite(sess.User.Email))
	fmt.Printf("  %s %d\n", utils.Bold("ID:"), sess.User.ID)
	fmt.Printf("  %s %s\n", utils.Bold("Roles:"), utils.BrightWhite(formatRoles(sess.User.Roles)))
	fmt.Printf("  %s %s\n", utils.Bold("Default scope:"), models.DefaultScope(sess.User))
	fmt.Printf("  %s %s\n", utils.Bold("Token:"), utils.Yellow(config.MaskToken(sess.Token)))
	return nil
}

func handleDashboard() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	sess, err := requireSession()
	if err != nil {
		return err
	}
	if settings.Web.URL == "" {
		return errors.New("dashboard URL not configured. Run 'ticketdesk config set web.url <url>'")
	}
	target := strings.TrimRight(settings.Web.URL, "/") + dashboardPath(sess.User)
	fmt.Printf("%s %s\n", utils.Dim("Opening dashboard:"), utils.BrightWhite(target))
	return utils.OpenURL(target)
}

func dashboardPath(u models.User) string {
	switch {
	case u.HasRole(models.RoleAdmin):
		return "/admin"
	case u.HasRole(models.RoleSupport):
		return "/support"
	case u.HasRole(models.RoleDeveloper):
		return "/developer"
	case u.HasRole(models.RoleClient):
		return "/client"
	}
	return "/login"
}

func handleList(ctx context.Context, opts listOptions) error {
	var status models.Status
	if s := strings.TrimSpace(opts.Status); s != "" && !strings.EqualFold(s, "all") {
		parsed, err := models.ParseStatus(s)
		if err != nil {
			return err
		}
		status = parsed
	}

	client, query, err := ticketClient(opts.Scope)
	if err != nil {
		return err
	}

	store := tickets.NewStore(client, query)
	if _, err := store.Load(ctx); err != nil {
		return err
	}
	list := store.Filter(status)

	if opts.JSON {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(utils.Cyan(utils.Bold(fmt.Sprintf("Tickets (%s)", describeQuery(query)))))
	fmt.Println()

	if len(list) == 0 {
		fmt.Println(utils.Dim("  No tickets found"))
		return nil
	}

	fmt.Println(utils.Dim(fmt.Sprintf("  %d tickets found", len(list))))
	fmt.Println()
	printTicketList(list)
	return nil
}

func handleShow(ctx context.Context, scope scopeOptions, id int64, withComments bool) error {
	editor, client, err := openEditor(ctx, scope, id)
	if err != nil {
		return err
	}
	ticket, _ := editor.Ticket()
	fmt.Println(renderTicket(ticket))

	if withComments {
		thread := comments.NewThread(client, id)
		list, err := thread.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Println()
		printComments(list)
	}
	return nil
}

func handleCreate(ctx context.Context, opts createOptions) error {
	if strings.TrimSpace(opts.Title) == "" {
		return errors.New("--title is required")
	}
	if opts.ApplicationID <= 0 {
		return errors.New("--app is required (see 'ticketdesk apps mine')")
	}
	priority, err := models.ParsePriority(opts.Priority)
	if err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	created, err := client.CreateTicket(ctx, models.NewTicket{
		Title:         strings.TrimSpace(opts.Title),
		Description:   strings.TrimSpace(opts.Description),
		ApplicationID: opts.ApplicationID,
		Priority:      priority,
		DeadLine:      strings.TrimSpace(opts.DeadLine),
	})
	if err != nil {
		return err
	}

	fmt.Println(utils.Green(utils.Bold(fmt.Sprintf("✓ Created ticket #%d", created.ID))))
	fmt.Printf("  %s %s\n", utils.Bold("Title:"), created.Title)
	return nil
}

func handleStatus(ctx context.Context, scope scopeOptions, id int64, rawStatus string) error {
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	client, query, err := ticketClient(scope)
	if err != nil {
		return err
	}
	store := tickets.NewStore(client, query)
	if _, err := store.Load(ctx); err != nil {
		return err
	}
	before, err := store.Select(id)
	if err != nil {
		return fmt.Errorf("%w in scope %s", err, describeQuery(query))
	}

	fmt.Println(utils.Cyan(fmt.Sprintf("  Updating #%d to '%s'...", id, status)))
	transitions := tickets.NewTransitioner(store, client, log)
	if err := transitions.Apply(ctx, id, status); err != nil {
		fmt.Println(utils.Yellow(fmt.Sprintf("  Status kept at '%s'", before.Status)))
		return err
	}

	fmt.Println(utils.Green(fmt.Sprintf("  ✓ #%d: %s → %s", id, before.Status, colorStatus(status))))
	return nil
}

func handleEdit(ctx context.Context, opts editOptions) error {
	var status models.Status
	if opts.Status != "" {
		parsed, err := models.ParseStatus(opts.Status)
		if err != nil {
			return err
		}
		status = parsed
	}

	editor, _, err := openEditor(ctx, opts.Scope, opts.TicketID)
	if err != nil {
		return err
	}

	if status != "" {
		if err := editor.SetStatus(status); err != nil {
			return err
		}
	}
	for _, id := range opts.Remove {
		if !editor.RemoveAssignee(id) {
			return fmt.Errorf("ticket #%d has no assignee %d", opts.TicketID, id)
		}
	}
	for _, userID := range opts.AddUsers {
		if err := addAssignee(editor, models.AssignTarget{UserID: strings.TrimSpace(userID)}); err != nil {
			return err
		}
	}
	for _, projectID := range opts.AddProjects {
		if err := addAssignee(editor, models.AssignTarget{ProjectID: strings.TrimSpace(projectID)}); err != nil {
			return err
		}
	}

	plan, err := editor.Plan()
	if err != nil {
		return err
	}
	if !editor.CanSave() {
		fmt.Println(utils.Dim("  Nothing to change"))
		return nil
	}
	printPlan(plan)
	if opts.DryRun {
		fmt.Println(utils.Dim("  Dry run, nothing sent"))
		return nil
	}

	if err := editor.Save(ctx); err != nil {
		fmt.Println(utils.Red("  ✗ Save failed; the server may hold part of the changes"))
		return err
	}

	fmt.Println(utils.Green(utils.Bold(fmt.Sprintf("✓ Ticket #%d updated", opts.TicketID))))
	if ticket, ok := editor.Ticket(); ok {
		fmt.Println(renderTicket(ticket))
	}
	return nil
}

func addAssignee(editor *tickets.Editor, target models.AssignTarget) error {
	if target.UserID != "" {
		if _, err := parseID(target.UserID); err != nil {
			return err
		}
	}
	if target.ProjectID != "" {
		if _, err := parseID(target.ProjectID); err != nil {
			return err
		}
	}
	added, err := editor.AddAssignee(target)
	if err != nil {
		return err
	}
	if !added {
		fmt.Println(utils.Dim(fmt.Sprintf("  %s is already assigned", describeAssignTarget(target))))
	}
	return nil
}

func handleCommentsList(ctx context.Context, ticketID int64) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	list, err := comments.NewThread(client, ticketID).Load(ctx)
	if err != nil {
		return err
	}
	printComments(list)
	return nil
}

func handleCommentsAdd(ctx context.Context, ticketID int64, text string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	thread := comments.NewThread(client, ticketID)
	if err := thread.Send(ctx, text); err != nil {
		return err
	}
	fmt.Println(utils.Green(fmt.Sprintf("✓ Comment added to #%d", ticketID)))
	fmt.Println()
	printComments(thread.Comments())
	return nil
}

func handleAppsList(ctx context.Context, mine bool) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	var apps []models.Application
	title := "Applications"
	if mine {
		title = "Your Applications"
		apps, err = client.ListMyApplications(ctx)
	} else {
		apps, err = client.ListApplications(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Println(utils.Cyan(utils.Bold(title)))
	fmt.Println()
	if len(apps) == 0 {
		fmt.Println(utils.Dim("  No applications"))
		return nil
	}
	for _, app := range apps {
		fmt.Printf("  %s  %s\n", utils.Dim(fmt.Sprintf("%4d", app.ID)), utils.BrightWhite(app.Name))
	}
	return nil
}

func handleAppsOwn(ctx context.Context, appID int64) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.OwnApplication(ctx, appID); err != nil {
		return err
	}
	fmt.Println(utils.Green(fmt.Sprintf("✓ You now own application %d", appID)))
	return nil
}

func handleAppsAdd(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("application name is required")
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.AddApplication(ctx, name); err != nil {
		return err
	}
	fmt.Println(utils.Green(fmt.Sprintf("✓ Added application '%s'", name)))
	return nil
}

func handleProjectsList(ctx context.Context, mine bool) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	var projects []models.Project
	if mine {
		projects, err = client.ListMyProjects(ctx)
	} else {
		projects, err = client.ListProjects(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Println(utils.Cyan(utils.Bold("Projects")))
	fmt.Println()
	if len(projects) == 0 {
		fmt.Println(utils.Dim("  No projects"))
		return nil
	}
	for _, p := range projects {
		fmt.Printf("  %s  %s %s\n",
			utils.Dim(fmt.Sprintf("%4d", p.ID)),
			utils.BrightWhite(p.Name),
			utils.Dim(fmt.Sprintf("(%d members)", len(p.Members))),
		)
	}
	return nil
}

func handleProjectsCreate(ctx context.Context, name string, memberIDs []int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("project name is required")
	}
	client, err := authedClient()
	if err != nil {
		return err
	}

	members := make([]models.User, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, models.User{ID: id})
	}
	project, err := client.CreateProject(ctx, name, members)
	if err != nil {
		return err
	}
	fmt.Println(utils.Green(utils.Bold(fmt.Sprintf("✓ Created project #%d %s", project.ID, project.Name))))
	return nil
}

func handleUsersList(ctx context.Context, rawRole string, all bool) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	var users []models.User
	if all {
		users, err = client.ListAllUsers(ctx)
	} else {
		role, perr := models.ParseRole(rawRole)
		if perr != nil {
			return perr
		}
		users, err = client.ListUsers(ctx, role)
	}
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println(utils.Dim("  No users"))
		return nil
	}
	for _, u := range users {
		fmt.Printf("  %s  %s %s\n",
			utils.Dim(fmt.Sprintf("%4d", u.ID)),
			utils.BrightWhite(u.Email),
			utils.Dim(formatRoles(u.Roles)),
		)
	}
	return nil
}

func handleUsersSetRole(ctx context.Context, userID int64, rawRole string) error {
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}
	fmt.Println(utils.Green(fmt.Sprintf("✓ User %d is now %s", userID, role)))
	return nil
}

func handleConfigShow() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	printConfig(settings)
	return nil
}

func handleConfigSet(key, value string) error {
	settings, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return err
		}
		settings = config.Default()
	}
	if key == "preferences.default_scope" && value != "" {
		if _, err := models.ParseScope(value); err != nil {
			return err
		}
	}
	if err := settings.Set(key, value); err != nil {
		return err
	}
	if err := settings.Save(); err != nil {
		return err
	}
	fmt.Println(utils.Green(utils.Bold(fmt.Sprintf("✓ Updated %s to: %s", key, value))))
	return nil
}

func handleConfigPath() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, errors.New("configuration not found. Run 'ticketdesk init' first")
		}
		return nil, err
	}
	if settings.Preferences.NoColor {
		utils.DisableColor(true)
	}
	return settings, nil
}

func requireSession() (*session.Session, error) {
	store, err := sessionStoreFactory()
	if err != nil {
		return nil, err
	}
	sess, err := store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, errors.New("not logged in. Run 'ticketdesk login' first")
		}
		return nil, err
	}
	return sess, nil
}

func authedClient() (deskService, error) {
	client, _, _, err := authedContext()
	return client, err
}

func authedContext() (deskService, *config.Settings, *session.Session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, nil, err
	}
	sess, err := requireSession()
	if err != nil {
		return nil, nil, nil, err
	}
	return apiFactory(settings, sess), settings, sess, nil
}

func ticketClient(scope scopeOptions) (deskService, models.TicketQuery, error) {
	client, settings, sess, err := authedContext()
	if err != nil {
		return nil, models.TicketQuery{}, err
	}
	query, err := resolveQuery(scope, settings, sess.User)
	if err != nil {
		return nil, models.TicketQuery{}, err
	}
	return client, query, nil
}

// resolveQuery picks the ticket scope: the --scope flag, then the configured
// preference, then the default for the user's role.
func resolveQuery(opts scopeOptions, settings *config.Settings, user models.User) (models.TicketQuery, error) {
	raw := opts.Scope
	if raw == "" {
		raw = settings.Preferences.DefaultScope
	}
	if raw == "" && opts.ProjectID > 0 {
		raw = string(models.ScopeProject)
	}

	scope := models.DefaultScope(user)
	if raw != "" {
		parsed, err := models.ParseScope(raw)
		if err != nil {
			return models.TicketQuery{}, err
		}
		scope = parsed
	}

	if scope == models.ScopeProject && opts.ProjectID <= 0 {
		return models.TicketQuery{}, errors.New("--project-id is required with --scope project")
	}
	query := models.TicketQuery{Scope: scope}
	if scope == models.ScopeProject {
		query.ProjectID = opts.ProjectID
	}
	return query, nil
}

func openEditor(ctx context.Context, scope scopeOptions, id int64) (*tickets.Editor, deskService, error) {
	client, query, err := ticketClient(scope)
	if err != nil {
		return nil, nil, err
	}
	store := tickets.NewStore(client, query)
	if _, err := store.Load(ctx); err != nil {
		return nil, nil, err
	}
	editor := tickets.NewEditor(store, client, log)
	if err := editor.Open(id); err != nil {
		return nil, nil, fmt.Errorf("%w in scope %s", err, describeQuery(query))
	}
	return editor, client, nil
}

func describeQuery(q models.TicketQuery) string {
	if q.Scope == models.ScopeProject {
		return "project " + strconv.FormatInt(q.ProjectID, 10)
	}
	return string(q.Scope)
}

func describeAssignTarget(t models.AssignTarget) string {
	if t.UserID != "" {
		return "user " + t.UserID
	}
	return "project " + t.ProjectID
}

func formatRoles(roles []models.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
