package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/guard"
	"github.com/tranminh/clubhub/internal/app/inbox"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
	"github.com/tranminh/clubhub/internal/app/stores"
	"github.com/tranminh/clubhub/internal/app/views"
	"github.com/tranminh/clubhub/internal/config"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

type appDeps struct {
	cfg           *config.Config
	sessions      *session.Store
	client        *api.Client
	guard         *guard.Guard
	inbox         *inbox.Inbox
	notifications *stores.NotificationStore
}

// app is the terminal shell: a route-driven command loop over the view
// controllers. Every navigation passes through the guard, so typing a route
// you may not see lands you where a browser redirect would.
type app struct {
	appDeps

	route   string
	scanner *bufio.Scanner

	login          *views.LoginView
	register       *views.RegisterView
	profile        *views.ProfileView
	changePassword *views.ChangePasswordView
	clubList       *views.ClubListView
	clubDetail     *views.ClubDetailView
	eventList      *views.EventListView
	eventDetail    *views.EventDetailView
	adminUsers     *views.AdminUsersView
	adminClubs     *views.AdminClubsView
	managerClubs   *views.ManagerClubsView
	managerReqs    *views.ManagerRequestsView
}

func newApp(deps appDeps) *app {
	return &app{
		appDeps: deps,
		scanner: bufio.NewScanner(os.Stdin),

		login:          views.NewLoginView(deps.client, deps.sessions),
		register:       views.NewRegisterView(deps.client),
		profile:        views.NewProfileView(deps.client, deps.sessions),
		changePassword: views.NewChangePasswordView(deps.client),
		clubList:       views.NewClubListView(deps.client),
		clubDetail:     views.NewClubDetailView(deps.client, deps.sessions),
		eventList:      views.NewEventListView(deps.client),
		eventDetail:    views.NewEventDetailView(deps.client, deps.sessions),
		adminUsers:     views.NewAdminUsersView(deps.client),
		adminClubs:     views.NewAdminClubsView(deps.client),
		managerClubs:   views.NewManagerClubsView(deps.client),
		managerReqs:    views.NewManagerRequestsView(deps.client),
	}
}

func (a *app) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.inbox.Close()

	a.notifications.Start(ctx)
	a.watchSession(ctx)

	a.navigate(ctx, guard.RouteRoot)

	for {
		a.printPrompt()
		if !a.scanner.Scan() {
			return a.scanner.Err()
		}
		line := strings.TrimSpace(a.scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		a.dispatch(ctx, line)
	}
}

// watchSession prints a note when the session file changes underneath us,
// mirroring how another open tab surfaces a login or logout.
func (a *app) watchSession(ctx context.Context) {
	changes, err := a.sessions.Watch(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Session watching unavailable")
		return
	}
	go func() {
		for current := range changes {
			if current.IsValid() {
				fmt.Printf("\n[session] signed in as %s\n", current.User.Name)
			} else {
				fmt.Println("\n[session] signed out elsewhere")
			}
		}
	}()
}

func (a *app) printPrompt() {
	state := a.notifications.State()
	if state.UnreadCount > 0 {
		fmt.Printf("clubhub %s (%d unread)> ", a.route, state.UnreadCount)
		return
	}
	fmt.Printf("clubhub %s> ", a.route)
}

// navigate resolves the requested route through the guard and renders the
// landing view.
func (a *app) navigate(ctx context.Context, requested string) {
	a.route = a.guard.Resolve(requested)
	if a.route != requested && requested != guard.RouteRoot {
		fmt.Printf("redirected to %s\n", a.route)
	}
	a.render(ctx)
}

func (a *app) render(ctx context.Context) {
	switch {
	case a.route == guard.RouteLogin:
		fmt.Println("-- Sign in: login <email> <password>")
	case a.route == guard.RouteRegister:
		fmt.Println("-- Register: register <name> <email> <password> [student|manager]")
	case a.route == guard.RouteEvents:
		a.renderEvents(ctx)
	case strings.HasPrefix(a.route, guard.RouteEvents+"/"):
		a.renderEventDetail(ctx, strings.TrimPrefix(a.route, guard.RouteEvents+"/"))
	case a.route == guard.RouteClubs:
		a.renderClubs(ctx)
	case strings.HasPrefix(a.route, guard.RouteClubs+"/"):
		a.renderClubDetail(ctx, strings.TrimPrefix(a.route, guard.RouteClubs+"/"))
	case a.route == guard.RouteProfile:
		a.renderProfile(ctx)
	case a.route == guard.RouteChangePassword:
		fmt.Println("-- Change password: passwd <old> <new> <confirm>")
	case a.route == guard.RouteStudentHome:
		a.renderStudentHome()
	case a.route == guard.RouteMessages:
		a.renderInbox(ctx)
	case a.route == guard.RouteAdminHome:
		a.renderAdmin(ctx)
	case a.route == guard.RouteManagerClubs:
		a.renderManagerClubs(ctx)
	case a.route == guard.RouteManagerReqs:
		a.renderManagerRequests(ctx)
	}
}

// dispatch handles one command line. Global commands work on any route;
// everything else is interpreted by the active view.
func (a *app) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "go":
		if len(args) == 1 {
			a.navigate(ctx, args[0])
		}
		return
	case "home":
		a.navigate(ctx, guard.RouteRoot)
		return
	case "logout":
		a.inbox.Close()
		a.navigate(ctx, a.guard.Logout())
		return
	case "login":
		a.doLogin(ctx, args)
		return
	case "register":
		a.doRegister(ctx, args)
		return
	case "passwd":
		a.doChangePassword(ctx, args)
		return
	case "notifications":
		a.renderNotifications(ctx)
		return
	case "read":
		if len(args) == 1 {
			if err := a.notifications.MarkRead(ctx, args[0]); err != nil {
				fmt.Println("could not mark as read")
			}
		}
		return
	case "read-all":
		a.notifications.MarkAllRead(ctx)
		return
	case "refresh":
		a.render(ctx)
		return
	}

	switch a.route {
	case guard.RouteMessages:
		a.dispatchInbox(ctx, cmd, args)
	case guard.RouteAdminHome:
		a.dispatchAdmin(ctx, cmd, args)
	case guard.RouteManagerClubs:
		a.dispatchManagerClubs(ctx, cmd, args)
	case guard.RouteManagerReqs:
		a.dispatchManagerRequests(ctx, cmd, args)
	default:
		a.dispatchBrowse(ctx, cmd, args)
	}
}

func (a *app) doLogin(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	a.login.Email, a.login.Password = args[0], args[1]
	next, err := a.login.Submit(ctx)
	if err != nil {
		fmt.Println(a.login.Err)
		return
	}
	a.notifications.LoadUnreadCount(ctx)
	a.navigate(ctx, next)
}

func (a *app) doRegister(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Println("usage: register <name> <email> <password> [student|manager]")
		return
	}
	a.register.Name, a.register.Email, a.register.Password = args[0], args[1], args[2]
	if len(args) > 3 {
		a.register.Role = models.UserRole(args[3])
	}
	next, err := a.register.Submit(ctx)
	if err != nil {
		fmt.Println(a.register.Err)
		return
	}
	fmt.Println("registered, please sign in")
	a.navigate(ctx, next)
}

func (a *app) doChangePassword(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Println("usage: passwd <old> <new> <confirm>")
		return
	}
	a.changePassword.OldPassword = args[0]
	a.changePassword.NewPassword = args[1]
	a.changePassword.ConfirmPassword = args[2]
	if err := a.changePassword.Submit(ctx); err != nil {
		fmt.Println(a.changePassword.Err)
		return
	}
	fmt.Println("password changed")
}

func (a *app) renderStudentHome() {
	fmt.Println("-- Dashboard: go /event | go /club | go /messages | go /profile")
}

func (a *app) renderEvents(ctx context.Context) {
	if err := a.eventList.Load(ctx); err != nil {
		fmt.Println(a.eventList.Err)
		return
	}
	fmt.Printf("-- Events (%d), open <id> to view\n", len(a.eventList.Events))
	for _, e := range a.eventList.Events {
		fmt.Printf("  %s  %s  %s (%s)\n", e.ID, e.Date.Format("2006-01-02"), e.Title, e.Location)
	}
}

func (a *app) renderEventDetail(ctx context.Context, id string) {
	if err := a.eventDetail.Load(ctx, id); err != nil {
		fmt.Println(a.eventDetail.Err)
		return
	}
	e := a.eventDetail.Event
	fmt.Printf("-- %s\n   %s\n   %s, %s\n   %d participants\n",
		e.Title, e.Description, e.Date.Format("2006-01-02 15:04"), e.Location, len(e.Participants))
	if a.eventDetail.Joined {
		fmt.Println("   you are participating")
	} else if a.eventDetail.CanJoin {
		fmt.Println("   join to participate")
	}
}

func (a *app) renderClubs(ctx context.Context) {
	if err := a.clubList.Load(ctx); err != nil {
		fmt.Println(a.clubList.Err)
		return
	}
	fmt.Printf("-- Clubs (%d), open <id> to view\n", len(a.clubList.Clubs))
	for _, c := range a.clubList.Clubs {
		fmt.Printf("  %s  %s [%s] %d members\n", c.ID, c.Name, c.Category, len(c.Members))
	}
}

func (a *app) renderClubDetail(ctx context.Context, id string) {
	if err := a.clubDetail.Load(ctx, id); err != nil {
		fmt.Println(a.clubDetail.Err)
		return
	}
	c := a.clubDetail.Club
	fmt.Printf("-- %s [%s]\n   %s\n   %d members\n", c.Name, c.Category, c.Description, len(c.Members))
	switch a.clubDetail.Membership {
	case views.MembershipMember:
		fmt.Println("   you are a member")
	case views.MembershipPending:
		fmt.Println("   your request is pending")
	case views.MembershipRejected:
		fmt.Println("   your request was rejected, apply to try again")
	case views.MembershipNone:
		fmt.Println("   apply [message] to request membership")
	}
}

func (a *app) renderProfile(ctx context.Context) {
	if err := a.profile.Load(ctx); err != nil {
		fmt.Println(a.profile.Err)
		return
	}
	u := a.profile.User
	fmt.Printf("-- Profile: %s <%s> (%s)\n   set-name <name> to edit\n", u.Name, u.Email, u.Role)
}

func (a *app) renderNotifications(ctx context.Context) {
	a.notifications.EnsureLoaded(ctx)
	state := a.notifications.State()
	if state.Err != "" {
		fmt.Println(state.Err)
		return
	}
	fmt.Printf("-- Notifications (%d unread)\n", state.UnreadCount)
	for _, n := range state.Notifications {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("  %s %s  %s\n", marker, n.ID, n.Content)
	}
}

// dispatchBrowse covers the public browsing routes and the profile screens
func (a *app) dispatchBrowse(ctx context.Context, cmd string, args []string) {
	switch {
	case cmd == "open" && len(args) == 1 && a.route == guard.RouteEvents:
		a.navigate(ctx, guard.RouteEvents+"/"+args[0])
	case cmd == "open" && len(args) == 1 && a.route == guard.RouteClubs:
		a.navigate(ctx, guard.RouteClubs+"/"+args[0])
	case cmd == "join" && strings.HasPrefix(a.route, guard.RouteEvents+"/"):
		if err := a.eventDetail.Join(ctx); err != nil {
			fmt.Println(a.eventDetail.Err)
			return
		}
		fmt.Println("joined")
	case cmd == "apply" && strings.HasPrefix(a.route, guard.RouteClubs+"/"):
		if err := a.clubDetail.SubmitRequest(ctx, strings.Join(args, " ")); err != nil {
			fmt.Println(a.clubDetail.Err)
			return
		}
		fmt.Println("request submitted, pending review")
	case cmd == "set-name" && a.route == guard.RouteProfile && len(args) > 0:
		a.profile.Name = strings.Join(args, " ")
		if err := a.profile.Save(ctx); err != nil {
			fmt.Println(a.profile.Err)
			return
		}
		fmt.Println("profile saved")
	default:
		fmt.Println("unknown command; try go <route>, open <id>, notifications, quit")
	}
}

func (a *app) renderInbox(ctx context.Context) {
	if err := a.inbox.LoadThreads(ctx, 1); err != nil {
		fmt.Println(a.inbox.State().Err)
		return
	}
	state := a.inbox.State()
	fmt.Printf("-- Conversations (page %d/%d), sel <n> to open\n",
		state.ThreadsPagination.CurrentPage, state.ThreadsPagination.TotalPages)
	for i, t := range state.Threads {
		pin := " "
		if t.Meta.IsPinned {
			pin = "^"
		}
		fmt.Printf("  %2d %s %-40s %s (%d unread)\n",
			i+1, pin, inbox.ThreadTitle(t, a.inbox.CurrentUserID()),
			inbox.LastMessagePreview(t), t.UnreadCount)
	}
}

func (a *app) dispatchInbox(ctx context.Context, cmd string, args []string) {
	state := a.inbox.State()

	threadAt := func(arg string) (models.Thread, bool) {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(state.Threads) {
			fmt.Println("no such conversation")
			return models.Thread{}, false
		}
		return state.Threads[n-1], true
	}

	switch cmd {
	case "sel":
		if len(args) != 1 {
			return
		}
		thread, ok := threadAt(args[0])
		if !ok {
			return
		}
		if err := a.inbox.Select(ctx, thread); err != nil {
			fmt.Println(a.inbox.State().Err)
			return
		}
		a.renderConversation()
	case "pin":
		if len(args) != 1 {
			return
		}
		thread, ok := threadAt(args[0])
		if !ok {
			return
		}
		if err := a.inbox.TogglePin(ctx, thread); err != nil {
			fmt.Println(a.inbox.State().Err)
		}
	case "older":
		if err := a.inbox.LoadOlder(ctx); err != nil {
			fmt.Println("could not load older messages")
			return
		}
		a.renderConversation()
	case "say":
		a.inbox.SetDraft(strings.Join(args, " "))
		if err := a.inbox.Send(ctx); err != nil {
			fmt.Println(err)
			return
		}
		a.renderConversation()
	case "attach":
		if len(args) != 1 {
			return
		}
		if _, err := a.inbox.AttachFile(args[0]); err != nil {
			fmt.Println("could not attach file:", err)
			return
		}
		fmt.Println("attached; say <text> or send to deliver")
	case "send":
		if err := a.inbox.Send(ctx); err != nil {
			fmt.Println(err)
			return
		}
		a.renderConversation()
	case "dm":
		if len(args) < 2 {
			fmt.Println("usage: dm <userId> <message...>")
			return
		}
		a.createThread(ctx, inbox.NewThreadForm{
			Type:         models.ThreadDirect,
			RecipientIDs: []string{args[0]},
			Content:      strings.Join(args[1:], " "),
		})
	case "club-thread":
		if len(args) < 2 {
			fmt.Println("usage: club-thread <clubId> <message...>")
			return
		}
		form := inbox.NewThreadForm{
			Type:    models.ThreadUserClub,
			ClubID:  args[0],
			Content: strings.Join(args[1:], " "),
		}
		if err := a.inbox.PrepareClubForm(ctx, &form); err != nil {
			fmt.Println("could not load the club")
			return
		}
		a.createThread(ctx, form)
	case "find":
		users, err := a.inbox.SearchUsers(ctx, strings.Join(args, " "))
		if err != nil {
			fmt.Println("search failed")
			return
		}
		for _, u := range users {
			fmt.Printf("  %s  %s <%s>\n", u.ID, u.Name, u.Email)
		}
	default:
		fmt.Println("inbox: sel <n>, pin <n>, say <text>, attach <path>, older, dm, club-thread, find")
	}
}

func (a *app) createThread(ctx context.Context, form inbox.NewThreadForm) {
	thread, err := a.inbox.CreateThread(ctx, form)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("conversation started: %s\n", inbox.ThreadTitle(*thread, a.inbox.CurrentUserID()))
	a.renderConversation()
}

func (a *app) renderConversation() {
	state := a.inbox.State()
	if state.Selected == nil {
		return
	}
	fmt.Printf("-- %s\n", inbox.ThreadTitle(*state.Selected, a.inbox.CurrentUserID()))
	for _, m := range state.Messages {
		who := m.Sender.Name
		if m.Sender.ID == a.inbox.CurrentUserID() {
			who = "you"
		}
		line := m.Content
		if line == "" && len(m.Attachments) > 0 {
			line = m.Attachments[0].Name
		}
		fmt.Printf("  [%s] %s: %s\n", m.CreatedAt.Format("15:04"), who, line)
	}
}

func (a *app) renderAdmin(ctx context.Context) {
	if err := a.adminUsers.Load(ctx); err != nil {
		fmt.Println(a.adminUsers.Err)
		return
	}
	fmt.Printf("-- Users (%d)\n", len(a.adminUsers.Users))
	for _, u := range a.adminUsers.Users {
		fmt.Printf("  %s  %-20s %-10s %s\n", u.ID, u.Name, u.Role, u.Status)
	}
	if err := a.adminClubs.Load(ctx); err != nil {
		fmt.Println(a.adminClubs.Err)
		return
	}
	fmt.Printf("-- Clubs (%d)\n", len(a.adminClubs.Clubs))
	for _, c := range a.adminClubs.Clubs {
		fmt.Printf("  %s  %-20s %s\n", c.ID, c.Name, c.Status)
	}
}

func (a *app) dispatchAdmin(ctx context.Context, cmd string, args []string) {
	var err error
	switch {
	case cmd == "block" && len(args) == 1:
		err = a.adminUsers.SetBlocked(ctx, args[0], true)
	case cmd == "unblock" && len(args) == 1:
		err = a.adminUsers.SetBlocked(ctx, args[0], false)
	case cmd == "del-user" && len(args) == 1:
		err = a.adminUsers.Delete(ctx, args[0])
	case cmd == "approve" && len(args) == 1:
		err = a.adminClubs.Approve(ctx, args[0])
	case cmd == "reject" && len(args) == 1:
		err = a.adminClubs.Reject(ctx, args[0])
	case cmd == "del-club" && len(args) == 1:
		err = a.adminClubs.Delete(ctx, args[0])
	default:
		fmt.Println("admin: block/unblock <userId>, del-user <userId>, approve/reject <clubId>, del-club <clubId>")
		return
	}
	if err != nil {
		fmt.Println("operation failed")
		return
	}
	a.render(ctx)
}

func (a *app) renderManagerClubs(ctx context.Context) {
	if err := a.managerClubs.Load(ctx); err != nil {
		fmt.Println(a.managerClubs.Err)
		return
	}
	fmt.Printf("-- My clubs (%d), create <name> <category> [description...]\n", len(a.managerClubs.Clubs))
	for _, c := range a.managerClubs.Clubs {
		fmt.Printf("  %s  %-20s %s\n", c.ID, c.Name, c.Status)
	}
}

func (a *app) dispatchManagerClubs(ctx context.Context, cmd string, args []string) {
	switch {
	case cmd == "create" && len(args) >= 2:
		err := a.managerClubs.Create(ctx, api.CreateClubRequest{
			Name:        args[0],
			Category:    args[1],
			Description: strings.Join(args[2:], " "),
		})
		if err != nil {
			fmt.Println(a.managerClubs.Err)
			return
		}
		fmt.Println("club created, awaiting approval")
		a.render(ctx)
	case cmd == "rename" && len(args) >= 2:
		err := a.managerClubs.Update(ctx, args[0], api.UpdateClubRequest{
			Name: strings.Join(args[1:], " "),
		})
		if err != nil {
			fmt.Println(a.managerClubs.Err)
			return
		}
		a.render(ctx)
	default:
		fmt.Println("manager: create <name> <category> [desc], rename <clubId> <name>, go /manager/requests")
	}
}

func (a *app) renderManagerRequests(ctx context.Context) {
	if err := a.managerReqs.Load(ctx); err != nil {
		fmt.Println(a.managerReqs.Err)
		return
	}
	if stats := a.managerReqs.Stats; stats != nil {
		fmt.Printf("-- Requests: %d total, %d pending, %d accepted, %d rejected\n",
			stats.Total, stats.Pending, stats.Accepted, stats.Rejected)
	}
	for _, r := range a.managerReqs.Requests {
		fmt.Printf("  %s  student=%s club=%s %s %q\n", r.ID, r.StudentID, r.ClubID, r.Status, r.Message)
	}
}

func (a *app) dispatchManagerRequests(ctx context.Context, cmd string, args []string) {
	var err error
	switch {
	case cmd == "accept" && len(args) == 1:
		err = a.managerReqs.Accept(ctx, args[0])
	case cmd == "deny" && len(args) == 1:
		err = a.managerReqs.Reject(ctx, args[0])
	case cmd == "filter" && len(args) == 1:
		err = a.managerReqs.SetFilter(ctx, models.RequestStatus(args[0]))
	default:
		fmt.Println("requests: accept <id>, deny <id>, filter <pending|accepted|rejected>")
		return
	}
	if err != nil {
		fmt.Println(a.managerReqs.Err)
		return
	}
	a.render(ctx)
}
