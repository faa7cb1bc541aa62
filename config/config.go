package config

import (
	"os"
	"time"

	"github.com/go-pg/pg/v10"
)

// Config is decoded from the TOML configuration file. Collection names may
// additionally be overridden through environment variables; Resolve applies
// the overrides and tenant-suffixed fallbacks in one place so individual
// routes never invent their own defaults.
type Config struct {
	App struct {
		Host string
		Port int
	}
	Database pg.Options
	Mongo    struct {
		URL      string
		Database string
	}
	Firestore struct {
		ProjectID       string
		CredentialsFile string
	}
	S3 struct {
		Endpoint  string
		Bucket    string
		AccessKey string
		SecretKey string
		UploadTTL duration
	}
	GeoIP struct {
		Enabled          bool
		LookupURL        string
		TrustedIP        string
		BlockedCountries []string
		BlockedPath      string
		Timeout          duration
	}
	Tenant      string
	Collections Collections
}

// duration lets TOML carry values like "15m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Collections maps each document-store entity to its collection name. The
// relational entities (banners, categories, news) live in fixed tables and
// are not remappable.
type Collections struct {
	Events        string
	FAQs          string
	StoreFAQs     string
	Logos         string
	Regions       string
	PrivacyPolicy string
	EmailSettings string
}

// Resolve fills every unset collection name: an environment variable wins,
// then the TOML value, then the tenant-suffixed fallback.
func (c *Collections) Resolve(tenant string) {
	if tenant == "" {
		tenant = "portal"
	}

	resolve := func(dst *string, envKey, fallback string) {
		if v := os.Getenv(envKey); v != "" {
			*dst = v
			return
		}
		if *dst == "" {
			*dst = fallback
		}
	}

	resolve(&c.Events, "EVENTS_COLLECTION", "events-"+tenant)
	resolve(&c.FAQs, "FAQS_COLLECTION", "faqs-"+tenant)
	resolve(&c.StoreFAQs, "STORE_FAQS_COLLECTION", "storeFaqs-"+tenant)
	resolve(&c.Logos, "LOGOS_COLLECTION", "logos-"+tenant)
	resolve(&c.Regions, "REGIONS_COLLECTION", "regions-"+tenant)
	resolve(&c.PrivacyPolicy, "PRIVACY_POLICY_COLLECTION", "privacyPolicy-"+tenant)
	resolve(&c.EmailSettings, "EMAIL_SETTINGS_COLLECTION", "emailSettings-"+tenant)
}
