package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ilia01/ticketdesk/internal/logger"
	"github.com/Ilia01/ticketdesk/internal/utils"
)

var (
	rootCmd = &cobra.Command{
		Use:           "ticketdesk",
		Short:         "Work the Ticket Desk queue from the terminal",
		Long:          "ticketdesk lists, edits, assigns and comments on Ticket Desk tickets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if os.Getenv("TICKETDESK_DEBUG") != "" {
				verbose = true
			}
			log = logger.New(cmd.ErrOrStderr(), verbose)
			utils.DisableColor(noColor || os.Getenv("NO_COLOR") != "")
		},
	}

	verbose bool
	noColor bool
	log     = zerolog.Nop()

	initHandler           = handleInit
	loginHandler          = handleLogin
	signupHandler         = handleSignup
	logoutHandler         = handleLogout
	whoamiHandler         = handleWhoami
	dashboardHandler      = handleDashboard
	listHandler           = handleList
	showHandler           = handleShow
	createHandler         = handleCreate
	statusHandler         = handleStatus
	editHandler           = handleEdit
	commentsListHandler   = handleCommentsList
	commentsAddHandler    = handleCommentsAdd
	appsListHandler       = handleAppsList
	appsOwnHandler        = handleAppsOwn
	appsAddHandler        = handleAppsAdd
	projectsListHandler   = handleProjectsList
	projectsCreateHandler = handleProjectsCreate
	usersListHandler      = handleUsersList
	usersSetRoleHandler   = handleUsersSetRole
	configShowHandler     = handleConfigShow
	configSetHandler      = handleConfigSet
	configPathHandler     = handleConfigPath
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(configCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure the Ticket Desk API endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return initHandler()
	},
}

var authEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginHandler(cmd.Context(), authEmail)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return signupHandler(cmd.Context(), authEmail)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutHandler()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiHandler()
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open your role's dashboard in the browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardHandler()
	},
}

var ticketsCmd = &cobra.Command{
	Use:     "tickets",
	Aliases: []string{"t"},
	Short:   "List and edit tickets",
}

var scopeOpts scopeOptions

var (
	listStatus string
	listJSON   bool
)

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets in the current scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHandler(cmd.Context(), listOptions{Scope: scopeOpts, Status: listStatus, JSON: listJSON})
	},
}

var showComments bool

var ticketsShowCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Show a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return showHandler(cmd.Context(), scopeOpts, id, showComments)
	},
}

var createOpts createOptions

var ticketsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a new ticket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return createHandler(cmd.Context(), createOpts)
	},
}

var ticketsStatusCmd = &cobra.Command{
	Use:   "status <ticket-id> <status>",
	Short: "Change a ticket's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return statusHandler(cmd.Context(), scopeOpts, id, args[1])
	},
}

var assignUsers, assignProjects []string

var ticketsAssignCmd = &cobra.Command{
	Use:   "assign <ticket-id>",
	Short: "Assign a ticket to developers or project teams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if len(assignUsers) == 0 && len(assignProjects) == 0 {
			return errors.New("--user or --project is required")
		}
		return editHandler(cmd.Context(), editOptions{
			Scope:       scopeOpts,
			TicketID:    id,
			AddUsers:    assignUsers,
			AddProjects: assignProjects,
		})
	},
}

var ticketsUnassignCmd = &cobra.Command{
	Use:   "unassign <ticket-id> <assignee-id>...",
	Short: "Remove assignees from a ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		remove, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		return editHandler(cmd.Context(), editOptions{Scope: scopeOpts, TicketID: id, Remove: remove})
	},
}

var (
	editStatus      string
	editAddUsers    []string
	editAddProjects []string
	editRemove      []string
	editDryRun      bool
)

var ticketsEditCmd = &cobra.Command{
	Use:   "edit <ticket-id>",
	Short: "Change status and assignees in one save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		remove, err := parseIDs(editRemove)
		if err != nil {
			return err
		}
		return editHandler(cmd.Context(), editOptions{
			Scope:       scopeOpts,
			TicketID:    id,
			Status:      editStatus,
			AddUsers:    editAddUsers,
			AddProjects: editAddProjects,
			Remove:      remove,
			DryRun:      editDryRun,
		})
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read and add ticket comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <ticket-id>",
	Short: "Show a ticket's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return commentsListHandler(cmd.Context(), id)
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <ticket-id> <comment>",
	Short: "Comment on a ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return commentsAddHandler(cmd.Context(), id, strings.Join(args[1:], " "))
	},
}

var appsCmd = &cobra.Command{
	Use:     "apps",
	Aliases: []string{"applications"},
	Short:   "Manage applications",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return appsListHandler(cmd.Context(), false)
	},
}

var appsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List applications you own",
	RunE: func(cmd *cobra.Command, args []string) error {
		return appsListHandler(cmd.Context(), true)
	},
}

var appsOwnCmd = &cobra.Command{
	Use:   "own <app-id>",
	Short: "Take ownership of an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return appsOwnHandler(cmd.Context(), id)
	},
}

var appsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new application",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appsAddHandler(cmd.Context(), strings.Join(args, " "))
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage project teams",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectsListHandler(cmd.Context(), false)
	},
}

var projectsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List projects you belong to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectsListHandler(cmd.Context(), true)
	},
}

var projectMembers []string

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project team",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		members, err := parseIDs(projectMembers)
		if err != nil {
			return err
		}
		return projectsCreateHandler(cmd.Context(), strings.Join(args, " "), members)
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users and manage roles",
}

var usersRole string

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users with a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return usersListHandler(cmd.Context(), usersRole, false)
	},
}

var usersAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every user (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return usersListHandler(cmd.Context(), "", true)
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <role>",
	Short: "Change a user's role (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return usersSetRoleHandler(cmd.Context(), id, args[1])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowHandler()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetHandler(args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config path",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPathHandler()
	},
}

func init() {
	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&authEmail, "email", "", "Account email")

	ticketsCmd.PersistentFlags().StringVar(&scopeOpts.Scope, "scope", "", "Ticket scope: all, mine, personal or project (default depends on role)")
	ticketsCmd.PersistentFlags().Int64Var(&scopeOpts.ProjectID, "project-id", 0, "Project id for --scope project")

	ticketsListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	ticketsListCmd.Flags().BoolVar(&listJSON, "json", false, "Output JSON")

	ticketsShowCmd.Flags().BoolVarP(&showComments, "comments", "c", false, "Include comments")

	ticketsCreateCmd.Flags().StringVar(&createOpts.Title, "title", "", "Ticket title")
	ticketsCreateCmd.Flags().StringVar(&createOpts.Description, "description", "", "Ticket description")
	ticketsCreateCmd.Flags().Int64Var(&createOpts.ApplicationID, "app", 0, "Application id")
	ticketsCreateCmd.Flags().StringVar(&createOpts.Priority, "priority", "MEDIUM", "LOW, MEDIUM, HIGH or CRITICAL")
	ticketsCreateCmd.Flags().StringVar(&createOpts.DeadLine, "deadline", "", "Deadline (YYYY-MM-DD)")

	ticketsAssignCmd.Flags().StringSliceVar(&assignUsers, "user", nil, "Developer user id (repeatable)")
	ticketsAssignCmd.Flags().StringSliceVar(&assignProjects, "project", nil, "Project id (repeatable)")

	ticketsEditCmd.Flags().StringVar(&editStatus, "status", "", "New status")
	ticketsEditCmd.Flags().StringSliceVar(&editAddUsers, "add-user", nil, "Assign a developer user id (repeatable)")
	ticketsEditCmd.Flags().StringSliceVar(&editAddProjects, "add-project", nil, "Assign a project id (repeatable)")
	ticketsEditCmd.Flags().StringSliceVar(&editRemove, "remove", nil, "Remove an assignee id (repeatable)")
	ticketsEditCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Show the calls without sending them")

	ticketsCmd.AddCommand(ticketsListCmd, ticketsShowCmd, ticketsCreateCmd, ticketsStatusCmd,
		ticketsAssignCmd, ticketsUnassignCmd, ticketsEditCmd)

	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd)
	appsCmd.AddCommand(appsListCmd, appsMineCmd, appsOwnCmd, appsAddCmd)

	projectsCreateCmd.Flags().StringSliceVar(&projectMembers, "member", nil, "Member user id (repeatable)")
	projectsCmd.AddCommand(projectsListCmd, projectsMineCmd, projectsCreateCmd)

	usersListCmd.Flags().StringVar(&usersRole, "role", "DEVELOPER", "Role to list")
	usersCmd.AddCommand(usersListCmd, usersAllCmd, usersSetRoleCmd)

	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return id, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
