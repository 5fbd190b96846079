package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dashpanel/internal/api"
	"github.com/fragmede/dashpanel/internal/auth"
	"github.com/fragmede/dashpanel/internal/cache"
	"github.com/fragmede/dashpanel/internal/config"
	"github.com/fragmede/dashpanel/internal/monitor"
	"github.com/fragmede/dashpanel/internal/panel"
	"github.com/fragmede/dashpanel/internal/render"
	"github.com/fragmede/dashpanel/internal/ui/dashpanel"
	"github.com/fragmede/dashpanel/internal/ui/history"
	"github.com/fragmede/dashpanel/internal/ui/login"
	"github.com/fragmede/dashpanel/internal/ui/messages"
	"github.com/fragmede/dashpanel/internal/ui/statusbar"
)

const (
	commentsPanel = "comments"
	postsPanel    = "posts"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewComments ViewType = iota
	ViewPosts
	ViewLogin
	ViewHistory
)

// App is the root Bubble Tea model.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType

	// Child models
	comments  dashpanel.Model[api.Comment, string]
	posts     dashpanel.Model[api.Post, int]
	loginForm login.Model
	history   history.Model
	statusBar statusbar.Model

	// Shared state
	cfg     config.Config
	cache   *cache.DB
	session *auth.Session
	monitor *monitor.Monitor
	viewer  auth.Viewer
	open    func(string) error

	// Dimensions
	width  int
	height int

	program monitor.Sender
}

// NewApp creates the root application model.
func NewApp(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session) *App {
	commentsCtrl := panel.New(client.FetchComments, client.DeleteComment, api.CommentKey,
		panel.Options{Name: commentsPanel, PageSize: cfg.PageSize})

	postsCtrl := panel.New(
		func(ctx context.Context, offset int) ([]api.Post, error) {
			return client.FetchPosts(ctx, panel.ViewerID(ctx), offset)
		},
		func(ctx context.Context, id int) error {
			viewerID := panel.ViewerID(ctx)
			if viewerID == "" {
				return auth.ErrNotLoggedIn
			}
			return client.DeletePost(ctx, id, viewerID)
		},
		api.PostKey,
		panel.Options{Name: postsPanel, PageSize: cfg.PageSize},
	)

	mon := monitor.New(cfg.MonitorInterval,
		monitor.Watch{Panel: commentsPanel, Check: commentsCtrl.Peek},
		monitor.Watch{Panel: postsPanel, Check: postsCtrl.Peek},
	)

	return &App{
		activeView: ViewComments,
		comments:   dashpanel.New(commentsCtrl, commentsResource(cfg.SiteURL)),
		posts:      dashpanel.New(postsCtrl, postsResource(cfg.SiteURL)),
		history:    history.New(db, cfg.HistoryLimit),
		statusBar: statusbar.New(
			statusbar.Tab{Name: commentsPanel, Label: "Comments"},
			statusbar.Tab{Name: postsPanel, Label: "Posts"},
		),
		cfg:     cfg,
		cache:   db,
		session: session,
		monitor: mon,
		open:    openBrowser,
	}
}

func commentsResource(site string) dashpanel.Resource[api.Comment, string] {
	return dashpanel.Resource[api.Comment, string]{
		Name:      commentsPanel,
		Title:     "Comments",
		Noun:      "comment",
		EmptyText: "You have no comments yet!",
		Columns: []dashpanel.Column[api.Comment]{
			{Title: "Updated", Width: 12, Value: func(c api.Comment) string { return render.Date(c.UpdatedAt.Time) }},
			{Title: "Comment", Value: func(c api.Comment) string { return render.PlainText(c.Content) }},
			{Title: "Likes", Width: 5, Value: func(c api.Comment) string { return strconv.Itoa(c.NumberOfLikes) }},
			{Title: "Post", Width: 24, Value: func(c api.Comment) string { return orID(c.Post.Title, c.Post.ID) }},
			{Title: "User", Width: 14, Value: func(c api.Comment) string { return orID(c.User.Username, c.User.ID) }},
		},
		Key:   api.CommentKey,
		Label: func(c api.Comment) string { return render.Excerpt(c.Content, 60) },
		Link: func(c api.Comment) string {
			if c.Post.Slug == "" {
				return ""
			}
			return siteURL(site, "post", c.Post.Slug)
		},
	}
}

func postsResource(site string) dashpanel.Resource[api.Post, int] {
	return dashpanel.Resource[api.Post, int]{
		Name:      postsPanel,
		Title:     "Posts",
		Noun:      "post",
		EmptyText: "You have no posts yet!",
		Columns: []dashpanel.Column[api.Post]{
			{Title: "Updated", Width: 12, Value: func(p api.Post) string { return render.Date(p.UpdatedAt.Time) }},
			{Title: "Title", Value: func(p api.Post) string { return p.Title }},
			{Title: "Category", Width: 14, Value: func(p api.Post) string { return p.Category }},
			{Title: "Image", Width: 5, Value: func(p api.Post) string {
				if p.Image == "" {
					return "-"
				}
				return "yes"
			}},
		},
		Key:   api.PostKey,
		Label: func(p api.Post) string { return p.Title },
		Link: func(p api.Post) string {
			if p.Slug == "" {
				return ""
			}
			return siteURL(site, "post", p.Slug)
		},
		EditLink: func(p api.Post) string {
			return siteURL(site, "update-post", strconv.Itoa(p.ID))
		},
	}
}

func siteURL(site, section, id string) string {
	u, err := url.JoinPath(site, section, id)
	if err != nil {
		return ""
	}
	return u
}

func orID(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

// SetProgram stores the program reference for the background monitor.
func (a *App) SetProgram(p monitor.Sender) {
	a.program = p
}

// Init restores a saved session, or opens the sign-in form.
func (a *App) Init() tea.Cmd {
	session, db := a.session, a.cache
	return func() tea.Msg {
		if session.Load(db) {
			v, _ := session.Viewer()
			return messages.SessionRestoredMsg{Viewer: v}
		}
		return messages.OpenLoginMsg{}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Header and status bar.
		contentHeight := msg.Height - 2
		a.comments.SetSize(msg.Width, contentHeight)
		a.posts.SetSize(msg.Width, contentHeight)
		a.history.SetSize(msg.Width, contentHeight)
		a.loginForm.SetSize(msg.Width, contentHeight)
		a.statusBar.SetSize(msg.Width)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.monitor.Stop()
			return a, tea.Quit
		}
		if a.panelConfirming() {
			break
		}
		if a.activeView == ViewLogin {
			if msg.String() == "esc" {
				return a, a.goBack()
			}
			break
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			if msg.String() == "q" && a.activeView == ViewHistory {
				return a, a.goBack()
			}
			a.monitor.Stop()
			return a, tea.Quit
		case key.Matches(msg, Keys.Back):
			if a.activeView == ViewHistory {
				return a, a.goBack()
			}
			return a, nil
		case key.Matches(msg, Keys.NextTab), key.Matches(msg, Keys.PrevTab):
			if a.activeView == ViewComments {
				a.switchPanel(ViewPosts)
			} else {
				a.switchPanel(ViewComments)
			}
			return a, nil
		case key.Matches(msg, Keys.Comments):
			a.switchPanel(ViewComments)
			return a, nil
		case key.Matches(msg, Keys.Posts):
			a.switchPanel(ViewPosts)
			return a, nil
		case key.Matches(msg, Keys.Login):
			if _, ok := a.session.Viewer(); !ok {
				return a, func() tea.Msg { return messages.OpenLoginMsg{} }
			}
			return a, nil
		case key.Matches(msg, Keys.Logout):
			if _, ok := a.session.Viewer(); ok {
				session, db := a.session, a.cache
				return a, func() tea.Msg {
					return messages.LoggedOutMsg{Err: session.Logout(db)}
				}
			}
			return a, nil
		case key.Matches(msg, Keys.History):
			return a, func() tea.Msg { return messages.OpenHistoryMsg{} }
		}

	case messages.OpenLoginMsg:
		if a.activeView != ViewLogin {
			a.loginForm = login.New(a.session)
			a.loginForm.SetSize(a.width, a.height-2)
			a.pushView(ViewLogin)
		}
		return a, nil

	case messages.OpenHistoryMsg:
		if a.activeView != ViewHistory {
			a.history.Load()
			a.pushView(ViewHistory)
		}
		return a, nil

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.SessionRestoredMsg:
		return a, a.setViewer(msg.Viewer, true)

	case messages.LoginResultMsg:
		if msg.Err == nil {
			if err := a.session.Save(a.cache); err != nil {
				log.Printf("saving session: %v", err)
			}
			cmd := a.setViewer(msg.Viewer, true)
			a.goBack()
			return a, cmd
		}
		// Let the login form show the error.

	case messages.LoggedOutMsg:
		if msg.Err != nil {
			log.Printf("logout: %v", msg.Err)
		}
		a.statusBar.SetStatus("Signed out", false)
		return a, a.setViewer(auth.Viewer{}, false)

	case messages.PageLoadedMsg:
		if msg.Err == nil {
			a.monitor.Reset(msg.Panel)
			a.statusBar.SetBadge(msg.Panel, 0)
		}
		return a, a.routeToPanels(msg)

	case messages.DeletedMsg:
		a.recordDeletion(msg)
		return a, a.routeToPanels(msg)

	case messages.NewItemsMsg:
		a.statusBar.SetBadge(msg.Panel, msg.Count)
		return a, nil

	case messages.OpenURLMsg:
		a.statusBar.SetStatus("Opening "+msg.URL, false)
		open := a.open
		return a, func() tea.Msg {
			if err := open(msg.URL); err != nil {
				log.Printf("opening %s: %v", msg.URL, err)
				return messages.StatusMsg{Text: "Could not open browser: " + err.Error(), IsError: true}
			}
			return nil
		}

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil
	}

	// Route to active view.
	var cmd tea.Cmd
	switch a.activeView {
	case ViewComments:
		a.comments, cmd = a.comments.Update(msg)
		cmds = append(cmds, cmd)
	case ViewPosts:
		a.posts, cmd = a.posts.Update(msg)
		cmds = append(cmds, cmd)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
		cmds = append(cmds, cmd)
	case ViewHistory:
		a.history, cmd = a.history.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewComments:
		content = a.comments.View()
	case ViewPosts:
		content = a.posts.View()
	case ViewLogin:
		content = a.loginForm.View()
	case ViewHistory:
		content = a.history.View()
	}

	header := HeaderStyle.Render("Dashboard")
	if a.viewer.Email != "" {
		header += DimStyle.Render(" " + a.viewer.Email)
	}
	header += DimStyle.Render(" · ") + AccentStyle.Render(a.cfg.SiteURL)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, a.statusBar.View())
}

// setViewer records an identity change and restarts both panels for it.
func (a *App) setViewer(v auth.Viewer, signedIn bool) tea.Cmd {
	a.viewer = v
	a.statusBar.SetUser(v.Username, v.IsAdmin)
	a.statusBar.SetBadge(commentsPanel, 0)
	a.statusBar.SetBadge(postsPanel, 0)
	a.monitor.Reset(commentsPanel)
	a.monitor.Reset(postsPanel)

	authorized := signedIn && v.IsAdmin
	if authorized && a.program != nil {
		a.monitor.Start(a.program)
	} else if !authorized {
		a.monitor.Stop()
	}
	return tea.Batch(a.comments.Start(v.ID, authorized), a.posts.Start(v.ID, authorized))
}

func (a *App) routeToPanels(msg tea.Msg) tea.Cmd {
	var c1, c2 tea.Cmd
	a.comments, c1 = a.comments.Update(msg)
	a.posts, c2 = a.posts.Update(msg)
	return tea.Batch(c1, c2)
}

func (a *App) recordDeletion(msg messages.DeletedMsg) {
	if errors.Is(msg.Err, panel.ErrGateIdle) {
		return
	}
	d := cache.Deletion{
		Kind:   msg.Kind,
		ItemID: msg.ItemID,
		Label:  msg.Label,
		Actor:  a.viewer.Username,
		OK:     msg.Err == nil,
	}
	if msg.Err != nil {
		d.Error = api.Message(msg.Err)
	}
	if err := a.cache.RecordDeletion(d); err != nil {
		log.Printf("recording deletion of %s %s: %v", msg.Kind, msg.ItemID, err)
	}
}

func (a *App) panelConfirming() bool {
	switch a.activeView {
	case ViewComments:
		return a.comments.Confirming()
	case ViewPosts:
		return a.posts.Confirming()
	}
	return false
}

func (a *App) switchPanel(v ViewType) {
	a.activeView = v
	a.previousViews = nil
	if v == ViewPosts {
		a.statusBar.SetActiveTab(postsPanel)
	} else {
		a.statusBar.SetActiveTab(commentsPanel)
	}
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	}
	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("don't know how to open a browser on %s", runtime.GOOS)
	}
	return cmd.Run()
}
