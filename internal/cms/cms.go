// Package cms binds every content entity to the backend store that owns it
// and carries the two in-process caches. Handlers talk to the Manager only;
// which of the three backends actually serves an entity is an implementation
// detail of the binding table.
package cms

import (
	"github.com/webportal/cms-backend/config"
	"github.com/webportal/cms-backend/internal/cache"
	"github.com/webportal/cms-backend/internal/storage"
)

// Entity names a content type served by the API.
type Entity string

const (
	Banners       Entity = "banners"
	Categories    Entity = "categories"
	News          Entity = "news"
	Events        Entity = "events"
	Regions       Entity = "regions"
	PrivacyPolicy Entity = "privacyPolicy"
	EmailSettings Entity = "emailSettings"
	FAQs          Entity = "faqs"
	StoreFAQs     Entity = "storeFaqs"
	Logos         Entity = "logos"
)

// binding ties an entity to its store, its resolved collection name and the
// fields a create must carry. Overridable bindings accept a per-request
// collection name; the relational tables never do.
type binding struct {
	store       storage.RecordStore
	collection  string
	required    []string
	overridable bool
}

type Manager struct {
	bindings map[Entity]binding

	// settings boxes the singleton email settings record for a few minutes;
	// storeFAQs holds the last store's FAQ listing until a mutation clears it.
	settings  *cache.TTLCache
	storeFAQs *cache.KeyedCache
}

// New wires the three stores to their entities. Collection names must already
// be resolved (config.Collections.Resolve).
func New(relational, documents, admin storage.RecordStore, cols config.Collections) *Manager {
	return &Manager{
		bindings: map[Entity]binding{
			Banners:    {store: relational, collection: "banners", required: []string{"title", "imageUrl"}},
			Categories: {store: relational, collection: "categories", required: []string{"name", "logoUrl", "backgroundColor"}},
			News:       {store: relational, collection: "news", required: []string{"title"}},

			Events:        {store: documents, collection: cols.Events, required: []string{"title", "startDate", "endDate"}},
			Regions:       {store: documents, collection: cols.Regions, required: []string{"name", "networkId"}},
			PrivacyPolicy: {store: documents, collection: cols.PrivacyPolicy, required: []string{"title", "content"}},
			EmailSettings: {store: documents, collection: cols.EmailSettings, required: []string{"email1"}},

			FAQs:      {store: admin, collection: cols.FAQs, required: []string{"question", "answer"}, overridable: true},
			StoreFAQs: {store: admin, collection: cols.StoreFAQs, required: []string{"storeId", "question", "answer"}, overridable: true},
			Logos:     {store: admin, collection: cols.Logos, required: []string{"name", "logoUrl"}, overridable: true},
		},
		settings:  cache.NewTTLCache(cache.DefaultTTL),
		storeFAQs: cache.NewKeyedCache(),
	}
}
