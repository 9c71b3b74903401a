// Command client is a terminal front end for a LinkBadge server. It keeps
// a local mirror of the user's documents under ~/.linkbadge so profile,
// QR settings, and contacts work offline and sync back optimistically.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linkbadge/linkbadge-backend/pkg/api"
	"github.com/linkbadge/linkbadge-backend/pkg/entitysync"
	"github.com/linkbadge/linkbadge-backend/pkg/localcache"
	"github.com/linkbadge/linkbadge-backend/pkg/logging"
)

// Default server base URL; override with LINKBADGE_SERVER env var or -server flag.
var serverBaseURL = "http://localhost:8080"

func main() {
	logging.Setup()

	cmd := flag.String("cmd", "profile", "Command: register|login|logout|whoami|profile|profile-set|vcard|qr|qr-set|contacts|contact-add|contact-remove|scan|sync")
	serverFlag := flag.String("server", "", "Override server base URL")

	name := flag.String("name", "", "Name (register, profile-set, contact-add)")
	email := flag.String("email", "", "Email (register, login, profile-set, contact-add)")
	password := flag.String("password", "", "Password (register, login)")
	title := flag.String("title", "", "Job title (profile-set, contact-add)")
	company := flag.String("company", "", "Company (profile-set, contact-add)")
	phone := flag.String("phone", "", "Phone (profile-set, contact-add)")
	layout := flag.String("layout", "", "QR card layout (qr-set): card|minimal|business|modern")
	fg := flag.String("fg", "", "QR foreground color (qr-set)")
	bg := flag.String("bg", "", "QR background color (qr-set)")
	id := flag.String("id", "", "Contact id (contact-remove)")
	payload := flag.String("payload", "", "Decoded QR text (scan)")
	metAt := flag.String("met-at", "", "Where you met (scan, contact-add)")
	flag.Parse()

	if env := os.Getenv("LINKBADGE_SERVER"); env != "" {
		serverBaseURL = strings.TrimRight(env, "/")
	}
	if *serverFlag != "" {
		serverBaseURL = strings.TrimRight(*serverFlag, "/")
	}

	app, err := newApp()
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = app.run(ctx, *cmd, cmdArgs{
		name: *name, email: *email, password: *password,
		title: *title, company: *company, phone: *phone,
		layout: *layout, fg: *fg, bg: *bg,
		id: *id, payload: *payload, metAt: *metAt,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type cmdArgs struct {
	name, email, password string
	title, company, phone string
	layout, fg, bg        string
	id, payload, metAt    string
}

// session is what survives between invocations: the tokens plus enough of
// the user to build an identity without a network call.
type session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         api.User `json:"user"`
}

type app struct {
	dir      string
	client   *api.Client
	cache    localcache.Store
	session  *session
	profile  *entitysync.Syncer[api.Profile]
	qr       *entitysync.Syncer[api.QrSettings]
	contacts *entitysync.Collection[api.Contact]
}

func newApp() (*app, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".linkbadge")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	var cache localcache.Store
	cache, err = localcache.OpenSQLite(filepath.Join(dir, "cache.db"))
	if err != nil {
		slog.Warn("on-disk cache unavailable, using memory", "error", err)
		cache = localcache.NewMemory()
	}

	client := api.NewClient(serverBaseURL)

	a := &app{
		dir:      dir,
		client:   client,
		cache:    cache,
		profile:  api.NewProfileSyncer(client, cache),
		qr:       api.NewQrSettingsSyncer(client, cache),
		contacts: api.NewContactsCollection(client, cache),
	}
	a.session = a.loadSession()
	if a.session != nil {
		client.SetToken(a.session.AccessToken)
	}
	return a, nil
}

func (a *app) Close() { a.cache.Close() }

// identity returns the sync identity: the signed-in user, or the guest
// identity when there is no session.
func (a *app) identity() entitysync.Identity {
	if a.session == nil {
		return entitysync.Identity{}
	}
	return entitysync.Identity{
		UserID: a.session.User.ID,
		Name:   a.session.User.Name,
		Email:  a.session.User.Email,
	}
}

func (a *app) run(ctx context.Context, cmd string, args cmdArgs) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "profile":
		return a.showProfile(ctx)
	case "profile-set":
		return a.setProfile(ctx, args)
	case "vcard":
		return a.vcard(ctx)
	case "qr":
		return a.showQr(ctx)
	case "qr-set":
		return a.setQr(ctx, args)
	case "contacts":
		return a.listContacts(ctx)
	case "contact-add":
		return a.addContact(ctx, args)
	case "contact-remove":
		return a.removeContact(ctx, args)
	case "scan":
		return a.scan(ctx, args)
	case "sync":
		return a.sync(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) register(ctx context.Context, args cmdArgs) error {
	if args.email == "" || args.password == "" {
		return fmt.Errorf("-email and -password are required")
	}
	s, err := a.client.Register(ctx, args.name, args.email, args.password)
	if err != nil {
		return err
	}
	a.adoptSession(s)
	fmt.Println("Registered and signed in as", s.User.Email)
	return nil
}

func (a *app) login(ctx context.Context, args cmdArgs) error {
	if args.email == "" || args.password == "" {
		return fmt.Errorf("-email and -password are required")
	}
	s, err := a.client.Login(ctx, args.email, args.password)
	if err != nil {
		return err
	}
	a.adoptSession(s)

	// Push anything captured while signed out.
	if err := a.contacts.Flush(ctx, a.identity()); err != nil {
		slog.Warn("some offline contacts were not pushed", "error", err)
	}

	fmt.Println("Signed in as", s.User.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if a.session == nil {
		fmt.Println("Not signed in")
		return nil
	}
	id := a.identity()
	if err := a.client.Logout(ctx, a.session.RefreshToken); err != nil {
		slog.Warn("server logout failed, clearing local session anyway", "error", err)
	}
	a.profile.Invalidate(id)
	a.qr.Invalidate(id)
	a.contacts.Invalidate(id)
	a.session = nil
	os.Remove(a.sessionPath())
	fmt.Println("Signed out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if a.session == nil {
		fmt.Println("Guest (not signed in)")
		return nil
	}
	user, err := a.client.Me(ctx)
	if err != nil {
		// Offline: fall back to the stored session.
		user = &a.session.User
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) showProfile(ctx context.Context) error {
	p, err := a.profile.Load(ctx, a.identity())
	if err != nil {
		return err
	}
	printJSON(p)
	a.warnIfDirty()
	return nil
}

func (a *app) setProfile(ctx context.Context, args cmdArgs) error {
	patch := map[string]any{}
	if args.name != "" {
		patch["name"] = args.name
	}
	if args.title != "" {
		patch["title"] = args.title
	}
	if args.company != "" {
		patch["company"] = args.company
	}
	if args.email != "" {
		patch["email"] = args.email
	}
	if args.phone != "" {
		patch["phone"] = args.phone
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update")
	}

	p, err := a.profile.Update(ctx, a.identity(), patch)
	if err != nil {
		return err
	}
	printJSON(p)
	a.warnIfDirty()
	return nil
}

func (a *app) vcard(ctx context.Context) error {
	if a.session == nil {
		return fmt.Errorf("sign in to export a vCard")
	}
	card, err := a.client.VCard(ctx)
	if err != nil {
		return err
	}
	fmt.Print(card)
	return nil
}

func (a *app) showQr(ctx context.Context) error {
	q, err := a.qr.Load(ctx, a.identity())
	if err != nil {
		return err
	}
	printJSON(q)
	a.warnIfDirty()
	return nil
}

func (a *app) setQr(ctx context.Context, args cmdArgs) error {
	patch := map[string]any{}
	if args.layout != "" {
		patch["layout"] = args.layout
	}
	if args.fg != "" {
		patch["foreground_color"] = args.fg
	}
	if args.bg != "" {
		patch["background_color"] = args.bg
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update")
	}

	q, err := a.qr.Update(ctx, a.identity(), patch)
	if err != nil {
		return err
	}
	printJSON(q)
	a.warnIfDirty()
	return nil
}

func (a *app) listContacts(ctx context.Context) error {
	contacts, err := a.contacts.Load(ctx, a.identity())
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		fmt.Println("No contacts yet")
		return nil
	}
	for _, contact := range contacts {
		line := contact.Name
		if contact.Company != "" {
			line += " (" + contact.Company + ")"
		}
		pending := ""
		if entitysync.IsLocalID(contact.ID) {
			pending = " [not synced]"
		}
		fmt.Printf("%s  %s%s\n", contact.ID, line, pending)
	}
	a.warnIfDirty()
	return nil
}

func (a *app) addContact(ctx context.Context, args cmdArgs) error {
	if args.name == "" {
		return fmt.Errorf("-name is required")
	}
	contact, err := a.contacts.Add(ctx, a.identity(), api.Contact{
		Name:    args.name,
		Title:   args.title,
		Company: args.company,
		Email:   args.email,
		Phone:   args.phone,
		MetAt:   args.metAt,
		Socials: api.SocialMap{},
	})
	if err != nil {
		return err
	}
	printJSON(contact)
	a.warnIfDirty()
	return nil
}

func (a *app) removeContact(ctx context.Context, args cmdArgs) error {
	if args.id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := a.contacts.Remove(ctx, a.identity(), args.id); err != nil {
		return err
	}
	fmt.Println("Contact removed")
	return nil
}

func (a *app) scan(ctx context.Context, args cmdArgs) error {
	if args.payload == "" {
		return fmt.Errorf("-payload is required (the decoded QR text)")
	}
	if a.session == nil {
		return fmt.Errorf("sign in to save scanned contacts")
	}

	result, err := a.client.Scan(ctx, args.payload, args.metAt)
	if err != nil {
		return err
	}
	a.contacts.Invalidate(a.identity())
	fmt.Printf("Saved %s (%s payload)\n", result.Contact.Name, result.Format)
	return nil
}

func (a *app) sync(ctx context.Context) error {
	if a.session == nil {
		return fmt.Errorf("sign in to sync")
	}
	if err := a.contacts.Flush(ctx, a.identity()); err != nil {
		return err
	}
	fmt.Println("Sync complete")
	return nil
}

func (a *app) adoptSession(s *api.Session) {
	a.session = &session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         s.User,
	}
	a.saveSession()
}

func (a *app) warnIfDirty() {
	if a.profile.Err() || a.qr.Err() || a.contacts.Err() {
		fmt.Fprintln(os.Stderr, "(warning: some changes have not reached the server yet)")
	}
}

func (a *app) sessionPath() string { return filepath.Join(a.dir, "session.json") }

func (a *app) loadSession() *session {
	raw, err := os.ReadFile(a.sessionPath())
	if err != nil {
		return nil
	}
	var s session
	if err := json.Unmarshal(raw, &s); err != nil || s.AccessToken == "" {
		return nil
	}
	return &s
}

func (a *app) saveSession() {
	raw, err := json.MarshalIndent(a.session, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(a.sessionPath(), raw, 0o600); err != nil {
		slog.Warn("could not persist session", "error", err)
	}
}

func printJSON(v any) {
	raw, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(raw))
}
