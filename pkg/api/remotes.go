package api

import (
	"context"

	"github.com/linkbadge/linkbadge-backend/pkg/entitysync"
	"github.com/linkbadge/linkbadge-backend/pkg/localcache"
)

// The remotes adapt the HTTP client to the sync layer's interfaces. The
// server scopes every call to the bearer token, so the identity argument
// only matters for cache keys and guest detection.

type profileRemote struct{ c *Client }

func (r profileRemote) Fetch(ctx context.Context, _ entitysync.Identity) (Profile, error) {
	return r.c.GetProfile(ctx)
}

func (r profileRemote) Create(ctx context.Context, _ entitysync.Identity, doc Profile) (Profile, error) {
	return r.c.CreateProfile(ctx, doc)
}

func (r profileRemote) Update(ctx context.Context, _ entitysync.Identity, patch map[string]any) (Profile, error) {
	return r.c.UpdateProfile(ctx, patch)
}

type qrSettingsRemote struct{ c *Client }

func (r qrSettingsRemote) Fetch(ctx context.Context, _ entitysync.Identity) (QrSettings, error) {
	return r.c.GetQrSettings(ctx)
}

func (r qrSettingsRemote) Create(ctx context.Context, _ entitysync.Identity, doc QrSettings) (QrSettings, error) {
	return r.c.CreateQrSettings(ctx, doc)
}

func (r qrSettingsRemote) Update(ctx context.Context, _ entitysync.Identity, patch map[string]any) (QrSettings, error) {
	return r.c.UpdateQrSettings(ctx, patch)
}

type contactsRemote struct{ c *Client }

func (r contactsRemote) List(ctx context.Context, _ entitysync.Identity) ([]Contact, error) {
	list, err := r.c.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return list.Contacts, nil
}

func (r contactsRemote) Create(ctx context.Context, _ entitysync.Identity, item Contact) (Contact, error) {
	item.ID = ""
	return r.c.CreateContact(ctx, item)
}

func (r contactsRemote) Update(ctx context.Context, _ entitysync.Identity, itemID string, patch map[string]any) (Contact, error) {
	return r.c.UpdateContact(ctx, itemID, patch)
}

func (r contactsRemote) Delete(ctx context.Context, _ entitysync.Identity, itemID string) error {
	return r.c.DeleteContact(ctx, itemID)
}

// DefaultProfile is the document a brand-new user starts with: identity
// fields carried over from registration, everything else empty.
func DefaultProfile(id entitysync.Identity) Profile {
	return Profile{
		UserID:  id.UserID,
		Name:    id.Name,
		Email:   id.Email,
		Socials: SocialMap{},
	}
}

// DefaultQrSettings mirrors the server's defaults so a freshly created
// document renders identically before and after the create round-trip.
func DefaultQrSettings(id entitysync.Identity) QrSettings {
	return QrSettings{
		UserID:          id.UserID,
		BackgroundColor: "#ffffff",
		ForegroundColor: "#000000",
		TextColor:       "#1a1a1a",
		CardColor:       "#ffffff",
		PageColor:       "#f5f5f5",
		FieldVisibility: map[string]bool{
			"name": true, "title": true, "company": true, "email": true, "phone": true,
		},
		Layout:       "card",
		Size:         256,
		Padding:      16,
		CornerRadius: 12,
		FontScale:    1,
	}
}

// NewProfileSyncer wires the profile document into the sync layer.
func NewProfileSyncer(c *Client, cache localcache.Store) *entitysync.Syncer[Profile] {
	return entitysync.NewSyncer[Profile](profileRemote{c}, cache, entitysync.Definition[Profile]{
		CacheKey: func(id entitysync.Identity) string { return localcache.ProfileKey(id.UserID) },
		Defaults: DefaultProfile,
	})
}

// NewQrSettingsSyncer wires the QR display settings document into the
// sync layer.
func NewQrSettingsSyncer(c *Client, cache localcache.Store) *entitysync.Syncer[QrSettings] {
	return entitysync.NewSyncer[QrSettings](qrSettingsRemote{c}, cache, entitysync.Definition[QrSettings]{
		CacheKey: func(id entitysync.Identity) string { return localcache.QrSettingsKey(id.UserID) },
		Defaults: DefaultQrSettings,
	})
}

// NewContactsCollection wires the contact list into the sync layer.
func NewContactsCollection(c *Client, cache localcache.Store) *entitysync.Collection[Contact] {
	return entitysync.NewCollection[Contact](contactsRemote{c}, cache, entitysync.CollectionDefinition[Contact]{
		CacheKey: func(id entitysync.Identity) string { return localcache.ContactsKey(id.UserID) },
		ID:       func(contact Contact) string { return contact.ID },
		SetID:    func(contact *Contact, id string) { contact.ID = id },
	})
}
