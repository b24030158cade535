package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Credential is a user/password pair, or a full pre-built URI for stores
// whose clients prefer one (MongoDB Atlas connection strings, full DSNs).
// When URI is set it wins over User/Password composition.
type Credential struct {
	User     string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	URI      string `envconfig:"URI"`
}

// Empty reports whether nothing was provided for this credential.
func (c Credential) Empty() bool { return c.User == "" && c.Password == "" && c.URI == "" }

// Secrets holds every credential the pipeline may reference. Values come from
// the environment with the CHURN_ prefix, e.g. CHURN_RELATIONAL_USER,
// CHURN_DOCUMENT_URI, CHURN_WAREHOUSE_PASSWORD.
type Secrets struct {
	Relational Credential `envconfig:"RELATIONAL"`
	Document   Credential `envconfig:"DOCUMENT"`
	Warehouse  Credential `envconfig:"WAREHOUSE"`

	// PushgatewayURL overrides the metrics push target.
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
}

// LoadSecrets reads credentials from the environment. A local .env file is
// merged in first when present; missing .env is not an error.
func LoadSecrets() (Secrets, error) {
	_ = godotenv.Load()
	var s Secrets
	if err := envconfig.Process("churn", &s); err != nil {
		return Secrets{}, fmt.Errorf("load secrets: %w", err)
	}
	return s, nil
}

// Resolve returns the credential for a descriptor's credentials_ref.
// Recognized refs: "relational", "document", "warehouse". An empty ref
// resolves to an empty credential, which is valid for sources that need no
// auth (local files, trust-auth databases).
func (s Secrets) Resolve(ref string) (Credential, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "":
		return Credential{}, nil
	case "relational":
		return s.Relational, nil
	case "document":
		return s.Document, nil
	case "warehouse":
		return s.Warehouse, nil
	default:
		return Credential{}, fmt.Errorf("unknown credentials_ref %q", ref)
	}
}
