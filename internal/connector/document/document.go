// Package document implements the document-store source connector over the
// MongoDB driver. Each document in the configured collection maps to one
// record; the store-internal _id is excluded by projection before the rows
// ever leave the driver.
package document

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func init() {
	connector.Register("document", func(cfg connector.Config) (connector.Connector, error) {
		return New(cfg)
	})
}

// Extractor is the document connector. The client is connected inside
// Extract and disconnected on every exit path.
type Extractor struct {
	cfg connector.Config
	uri string
}

// New builds an Extractor, composing the connection URI from the descriptor
// and resolved credential unless the credential already carries a full URI
// (Atlas-style connection strings).
func New(cfg connector.Config) (*Extractor, error) {
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("document source %s: database and collection required", cfg.Name)
	}
	uri := cfg.Credential.URI
	if uri == "" {
		if cfg.Host == "" {
			return nil, fmt.Errorf("document source %s: host required", cfg.Name)
		}
		port := cfg.Port
		if port == 0 {
			port = 27017
		}
		u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", cfg.Host, port)}
		if cfg.Credential.User != "" {
			u.User = url.UserPassword(cfg.Credential.User, cfg.Credential.Password)
		}
		uri = u.String()
	}
	return &Extractor{cfg: cfg, uri: uri}, nil
}

// Extract reads the full collection snapshot. Connectivity and server
// selection failures surface as SourceUnavailable; malformed documents as
// SourceFormat.
func (e *Extractor) Extract(ctx context.Context) ([]records.Record, connector.Manifest, error) {
	op := "document: " + e.cfg.Database + "." + e.cfg.Collection

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(e.uri).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, connector.Manifest{}, errkind.New(errkind.SourceUnavailable, op, err)
	}
	defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, connector.Manifest{}, errkind.New(errkind.SourceUnavailable, op, err)
	}

	coll := client.Database(e.cfg.Database).Collection(e.cfg.Collection)
	cur, err := coll.Find(ctx, bson.D{},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}}))
	if err != nil {
		return nil, connector.Manifest{}, errkind.New(errkind.SourceUnavailable, op, err)
	}
	defer cur.Close(ctx)

	var out []records.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, connector.Manifest{}, errkind.New(errkind.SourceFormat, op, err)
		}
		out = append(out, fromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, connector.Manifest{}, errkind.New(errkind.SourceUnavailable, op, err)
	}

	return out, connector.NewManifest(e.cfg.Name, nil, out), nil
}

// fromDocument maps BSON values onto the loose record types the normalizer
// expects. Nested documents and arrays are rendered to strings; the review
// schema is flat, so this only matters for stray fields.
func fromDocument(doc bson.M) records.Record {
	rec := make(records.Record, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case nil:
			rec[k] = nil
		case string, bool, int32, int64, float64:
			rec[k] = t
		case primitive.DateTime:
			rec[k] = t.Time().UTC().Format(time.RFC3339)
		case primitive.Decimal128:
			rec[k] = t.String()
		default:
			rec[k] = fmt.Sprint(t)
		}
	}
	return rec
}
