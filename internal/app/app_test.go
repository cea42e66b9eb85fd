package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Ilia01/ticketdesk/internal/config"
	"github.com/Ilia01/ticketdesk/internal/models"
	"github.com/Ilia01/ticketdesk/internal/session"
	"github.com/Ilia01/ticketdesk/internal/tickets"
)

func TestStatusCommandInvokesHandler(t *testing.T) {
	resetFlags()
	restore := swapStatusHandler(func(ctx context.Context, scope scopeOptions, id int64, status string) error {
		if id != 42 || status != "resolved" {
			t.Fatalf("unexpected args: %d %s", id, status)
		}
		if scope.Scope != "project" || scope.ProjectID != 9 {
			t.Fatalf("scope flags not passed: %+v", scope)
		}
		return nil
	})
	defer restore()

	if err := executeCLI("tickets", "status", "--scope", "project", "--project-id", "9", "#42", "resolved"); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
}

func TestEditCommandFlags(t *testing.T) {
	resetFlags()
	var got editOptions
	restore := swapEditHandler(func(ctx context.Context, opts editOptions) error {
		got = opts
		return nil
	})
	defer restore()

	err := executeCLI("tickets", "edit", "42",
		"--status", "in progress",
		"--add-user", "7", "--add-user", "8",
		"--add-project", "3",
		"--remove", "11",
		"--dry-run",
	)
	if err != nil {
		t.Fatalf("edit command failed: %v", err)
	}

	if got.TicketID != 42 || got.Status != "in progress" || !got.DryRun {
		t.Fatalf("unexpected options: %+v", got)
	}
	if strings.Join(got.AddUsers, ",") != "7,8" || strings.Join(got.AddProjects, ",") != "3" {
		t.Fatalf("unexpected additions: %+v", got)
	}
	if len(got.Remove) != 1 || got.Remove[0] != 11 {
		t.Fatalf("unexpected removals: %v", got.Remove)
	}
}

func TestAssignCommandRequiresTarget(t *testing.T) {
	resetFlags()
	restore := swapEditHandler(func(ctx context.Context, opts editOptions) error {
		t.Fatalf("handler should not be called")
		return nil
	})
	defer restore()

	if err := executeCLI("tickets", "assign", "42"); err == nil {
		t.Fatalf("expected error without --user or --project")
	}
}

func TestUnassignCommandParsesIDs(t *testing.T) {
	resetFlags()
	restore := swapEditHandler(func(ctx context.Context, opts editOptions) error {
		if opts.TicketID != 5 || len(opts.Remove) != 2 || opts.Remove[0] != 1 || opts.Remove[1] != 2 {
			t.Fatalf("unexpected options: %+v", opts)
		}
		return nil
	})
	defer restore()

	if err := executeCLI("tickets", "unassign", "5", "1", "2"); err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if err := executeCLI("tickets", "unassign", "5", "x"); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestConfigSetCommand(t *testing.T) {
	called := false
	restore := swapConfigSetHandler(func(key, value string) error {
		called = true
		if key != "api.url" || value != "https://desk.example.com/api" {
			t.Fatalf("unexpected args %s %s", key, value)
		}
		return nil
	})
	defer restore()

	if err := executeCLI("config", "set", "api.url", "https://desk.example.com/api"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !called {
		t.Fatalf("handler not called")
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID(" #17 "); err != nil || id != 17 {
		t.Fatalf("parseID(#17) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-3", "abc"} {
		if _, err := parseID(raw); err == nil {
			t.Fatalf("parseID(%q) should fail", raw)
		}
	}
}

func TestResolveQuery(t *testing.T) {
	developer := models.User{Roles: []models.Role{models.RoleDeveloper}}
	settings := config.Default()

	q, err := resolveQuery(scopeOptions{}, settings, developer)
	if err != nil || q.Scope != models.ScopePersonal {
		t.Fatalf("role default: %+v, %v", q, err)
	}

	q, err = resolveQuery(scopeOptions{ProjectID: 4}, settings, developer)
	if err != nil || q.Scope != models.ScopeProject || q.ProjectID != 4 {
		t.Fatalf("project id implies project scope: %+v, %v", q, err)
	}

	withPref := config.Default()
	withPref.Preferences.DefaultScope = "all"
	q, err = resolveQuery(scopeOptions{}, withPref, developer)
	if err != nil || q.Scope != models.ScopeAll {
		t.Fatalf("preference: %+v, %v", q, err)
	}

	q, err = resolveQuery(scopeOptions{Scope: "mine"}, withPref, developer)
	if err != nil || q.Scope != models.ScopeMine {
		t.Fatalf("flag beats preference: %+v, %v", q, err)
	}

	if _, err := resolveQuery(scopeOptions{Scope: "project"}, settings, developer); err == nil {
		t.Fatalf("expected error for project scope without id")
	}
	if _, err := resolveQuery(scopeOptions{Scope: "everything"}, settings, developer); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func TestDashboardPath(t *testing.T) {
	cases := map[models.Role]string{
		models.RoleAdmin:     "/admin",
		models.RoleSupport:   "/support",
		models.RoleDeveloper: "/developer",
		models.RoleClient:    "/client",
	}
	for role, want := range cases {
		if got := dashboardPath(models.User{Roles: []models.Role{role}}); got != want {
			t.Fatalf("%s: got %s want %s", role, got, want)
		}
	}
}

func TestEndToEndEditSave(t *testing.T) {
	desk := setupDesk(t, models.RoleSupport)

	err := executeCLI("tickets", "edit", "42", "--status", "RESOLVED", "--add-user", "7", "--remove", "3")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	desk.mu.Lock()
	defer desk.mu.Unlock()
	if len(desk.statusCalls) != 1 || desk.statusCalls[0] != models.StatusResolved {
		t.Fatalf("unexpected status calls: %v", desk.statusCalls)
	}
	if len(desk.assignCalls) != 1 || desk.assignCalls[0].UserID != "7" {
		t.Fatalf("unexpected assign calls: %v", desk.assignCalls)
	}
	if len(desk.removeCalls) != 1 || desk.removeCalls[0] != 3 {
		t.Fatalf("unexpected remove calls: %v", desk.removeCalls)
	}
	if desk.listCalls != 2 {
		t.Fatalf("expected initial load and reload, got %d list calls", desk.listCalls)
	}
	if desk.lastQuery.Scope != models.ScopeAll {
		t.Fatalf("support should default to all tickets, got %s", desk.lastQuery.Scope)
	}
}

func TestEndToEndEditDryRunSendsNothing(t *testing.T) {
	desk := setupDesk(t, models.RoleSupport)

	if err := executeCLI("tickets", "edit", "42", "--add-project", "2", "--dry-run"); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if len(desk.assignCalls) != 0 || len(desk.statusCalls) != 0 {
		t.Fatalf("dry run issued calls: %v %v", desk.assignCalls, desk.statusCalls)
	}
}

func TestEndToEndEditSaveFailure(t *testing.T) {
	desk := setupDesk(t, models.RoleSupport)
	desk.assignErr = errors.New("403")

	err := executeCLI("tickets", "assign", "42", "--user", "7")
	if !errors.Is(err, tickets.ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	if desk.listCalls != 1 {
		t.Fatalf("store must not reload after a failed save, got %d list calls", desk.listCalls)
	}
}

func TestEndToEndStatusFailureKeepsStatus(t *testing.T) {
	desk := setupDesk(t, models.RoleSupport)
	desk.statusErr = errors.New("500")

	err := executeCLI("tickets", "status", "42", "closed")
	if !errors.Is(err, tickets.ErrStatusUpdateFailed) {
		t.Fatalf("expected ErrStatusUpdateFailed, got %v", err)
	}
	if desk.tickets[0].Status != models.StatusOpen {
		t.Fatalf("server ticket changed: %s", desk.tickets[0].Status)
	}
}

func TestEndToEndInvalidStatusMakesNoCalls(t *testing.T) {
	desk := setupDesk(t, models.RoleSupport)

	err := executeCLI("tickets", "status", "42", "DONE")
	if !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if desk.listCalls != 0 || len(desk.statusCalls) != 0 {
		t.Fatalf("invalid status reached the network")
	}
}

func TestEndToEndCommentAdd(t *testing.T) {
	desk := setupDesk(t, models.RoleDeveloper)

	if err := executeCLI("comments", "add", "42", "looking", "into", "it"); err != nil {
		t.Fatalf("comment add failed: %v", err)
	}
	if len(desk.comments) != 1 || desk.comments[0].Comment != "looking into it" {
		t.Fatalf("unexpected comments: %+v", desk.comments)
	}
}

func TestTicketsRequireSession(t *testing.T) {
	resetFlags()
	t.Setenv("HOME", t.TempDir())
	if err := config.Default().Save(); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	err := executeCLI("tickets", "list")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected not logged in error, got %v", err)
	}
}

func TestLoginSavesSession(t *testing.T) {
	resetFlags()
	t.Setenv("HOME", t.TempDir())
	if err := config.Default().Save(); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	restoreAuth := swapAuthFactory(func(*config.Settings) authService {
		return fakeAuth{}
	})
	defer restoreAuth()
	restorePrompt := swapPasswordPrompt(func(string) (string, error) { return "secret", nil })
	defer restorePrompt()

	if err := executeCLI("login", "--email", "dev@example.com"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	store, err := session.DefaultStore()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	sess, err := store.Load()
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.User.Email != "dev@example.com" || sess.Token != "tok-secret" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := executeCLI("logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
}

func executeCLI(args ...string) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(bytes.NewBuffer(nil))
	rootCmd.SetErr(bytes.NewBuffer(nil))
	return rootCmd.Execute()
}

func resetFlags() {
	authEmail = ""
	scopeOpts = scopeOptions{}
	listStatus, listJSON = "", false
	showComments = false
	createOpts = createOptions{Priority: "MEDIUM"}
	assignUsers, assignProjects = nil, nil
	editStatus, editDryRun = "", false
	editAddUsers, editAddProjects, editRemove = nil, nil, nil
	projectMembers = nil
	usersRole = "DEVELOPER"
}

// setupDesk writes a config and a session under a temporary HOME and routes
// API calls to an in-memory desk holding ticket 42.
func setupDesk(t *testing.T, role models.Role) *fakeDesk {
	t.Helper()
	resetFlags()
	t.Setenv("HOME", t.TempDir())

	if err := config.Default().Save(); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	store, err := session.DefaultStore()
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	user := models.User{ID: 1, Email: "agent@example.com", Roles: []models.Role{role}}
	if err := store.Save(&session.Session{User: user, Token: "tok"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	desk := &fakeDesk{
		tickets: []models.Ticket{{
			ID:       42,
			Title:    "Login page broken",
			Status:   models.StatusOpen,
			Priority: models.PriorityHigh,
			Assignees: []models.Assignee{
				{ID: 3, User: &models.User{ID: 5, Email: "dev5@example.com"}},
			},
		}},
		nextAssignee: 100,
	}
	restore := swapAPIFactory(func(*config.Settings, *session.Session) deskService {
		return desk
	})
	t.Cleanup(restore)
	return desk
}

func swapStatusHandler(fn func(context.Context, scopeOptions, int64, string) error) func() {
	orig := statusHandler
	statusHandler = fn
	return func() { statusHandler = orig }
}

func swapEditHandler(fn func(context.Context, editOptions) error) func() {
	orig := editHandler
	editHandler = fn
	return func() { editHandler = orig }
}

func swapConfigSetHandler(fn func(string, string) error) func() {
	orig := configSetHandler
	configSetHandler = fn
	return func() { configSetHandler = orig }
}

func swapAPIFactory(fn func(*config.Settings, *session.Session) deskService) func() {
	orig := apiFactory
	apiFactory = fn
	return func() { apiFactory = orig }
}

func swapAuthFactory(fn func(*config.Settings) authService) func() {
	orig := authFactory
	authFactory = fn
	return func() { authFactory = orig }
}

func swapPasswordPrompt(fn func(string) (string, error)) func() {
	orig := passwordPrompt
	passwordPrompt = fn
	return func() { passwordPrompt = orig }
}

type fakeAuth struct{}

func (fakeAuth) Login(ctx context.Context, email, password string) (*session.Session, error) {
	return &session.Session{
		User:  models.User{ID: 9, Email: email, Roles: []models.Role{models.RoleDeveloper}},
		Token: "tok-" + password,
	}, nil
}

func (fakeAuth) Signup(ctx context.Context, email, password string) (*session.Session, error) {
	return fakeAuth{}.Login(ctx, email, password)
}

// fakeDesk behaves like a small server: status, assign and remove calls
// change the tickets it returns on the next list.
type fakeDesk struct {
	mu sync.Mutex

	tickets      []models.Ticket
	comments     []models.Comment
	nextAssignee int64

	statusErr error
	assignErr error

	listCalls   int
	lastQuery   models.TicketQuery
	statusCalls []models.Status
	assignCalls []models.AssignTarget
	removeCalls []int64
}

func (f *fakeDesk) ListTickets(ctx context.Context, q models.TicketQuery) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastQuery = q
	out := make([]models.Ticket, len(f.tickets))
	for i, t := range f.tickets {
		out[i] = t.Clone()
	}
	return out, nil
}

func (f *fakeDesk) ticket(id int64) *models.Ticket {
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			return &f.tickets[i]
		}
	}
	return nil
}

func (f *fakeDesk) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, status)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	t := f.ticket(id)
	t.Status = status
	out := t.Clone()
	return &out, nil
}

func (f *fakeDesk) AssignTicket(ctx context.Context, id int64, target models.AssignTarget) (*models.Assignee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignCalls = append(f.assignCalls, target)
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	f.nextAssignee++
	a := models.Assignee{ID: f.nextAssignee}
	if target.UserID != "" {
		a.User = &models.User{Email: "user" + target.UserID + "@example.com"}
	} else {
		a.Project = &models.Project{Name: "project " + target.ProjectID}
	}
	t := f.ticket(id)
	t.Assignees = append(t.Assignees, a)
	return &a, nil
}

func (f *fakeDesk) RemoveAssignee(ctx context.Context, ticketID, assigneeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, assigneeID)
	t := f.ticket(ticketID)
	kept := t.Assignees[:0]
	for _, a := range t.Assignees {
		if a.ID != assigneeID {
			kept = append(kept, a)
		}
	}
	t.Assignees = kept
	return nil
}

func (f *fakeDesk) ListComments(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.comments...), nil
}

func (f *fakeDesk) CreateComment(ctx context.Context, ticketID int64, text string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Comment{ID: int64(len(f.comments) + 1), Comment: text}
	f.comments = append(f.comments, c)
	return &c, nil
}

func (f *fakeDesk) CreateTicket(ctx context.Context, t models.NewTicket) (*models.Ticket, error) {
	return &models.Ticket{ID: 99, Title: t.Title}, nil
}

func (f *fakeDesk) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	return nil, nil
}

func (f *fakeDesk) ListAllUsers(ctx context.Context) ([]models.User, error) { return nil, nil }

func (f *fakeDesk) UpdateUserRole(ctx context.Context, userID int64, role models.Role) error {
	return nil
}

func (f *fakeDesk) ListProjects(ctx context.Context) ([]models.Project, error)   { return nil, nil }
func (f *fakeDesk) ListMyProjects(ctx context.Context) ([]models.Project, error) { return nil, nil }

func (f *fakeDesk) CreateProject(ctx context.Context, name string, members []models.User) (*models.Project, error) {
	return &models.Project{ID: 1, Name: name, Members: members}, nil
}

func (f *fakeDesk) ListApplications(ctx context.Context) ([]models.Application, error) {
	return nil, nil
}

func (f *fakeDesk) ListMyApplications(ctx context.Context) ([]models.Application, error) {
	return nil, nil
}

func (f *fakeDesk) OwnApplication(ctx context.Context, appID int64) error { return nil }
func (f *fakeDesk) AddApplication(ctx context.Context, name string) error  { return nil }
