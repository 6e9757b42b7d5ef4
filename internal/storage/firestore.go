package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/drivedash/drivedash/internal/models"
)

const (
	listingsCollection = "listings"
	dealsCollection    = "deals"
	historyCollection  = "stats_history"
)

// Client stores the collections in Firestore: one document per listing or
// deal keyed by ad id, and one document per stats history entry.
type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Listings(ctx context.Context) ([]models.Listing, error) {
	return c.readListings(ctx, listingsCollection)
}

func (c *Client) Deals(ctx context.Context) ([]models.Listing, error) {
	return c.readListings(ctx, dealsCollection)
}

// Stats reads the history oldest first. A missing collection is an empty history.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	iter := c.client.Collection(historyCollection).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	stats := models.Stats{History: []models.StatsHistoryEntry{}}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return stats, nil
			}
			return models.Stats{}, fmt.Errorf("failed to iterate %s: %w", historyCollection, err)
		}
		var entry models.StatsHistoryEntry
		if err := doc.DataTo(&entry); err != nil {
			return models.Stats{}, fmt.Errorf("failed to unmarshal history entry %s: %w", doc.Ref.ID, err)
		}
		stats.History = append(stats.History, entry)
	}
	return stats, nil
}

func (c *Client) readListings(ctx context.Context, collection string) ([]models.Listing, error) {
	iter := c.client.Collection(collection).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	listings := []models.Listing{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
		}
		var l models.Listing
		if err := doc.DataTo(&l); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s document %s: %w", collection, doc.Ref.ID, err)
		}
		if l.ID == "" {
			l.ID = models.ListingID(doc.Ref.ID)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *Client) SaveListings(ctx context.Context, listings []models.Listing) error {
	return c.writeListings(ctx, listingsCollection, listings)
}

func (c *Client) SaveDeals(ctx context.Context, deals []models.Listing) error {
	return c.writeListings(ctx, dealsCollection, deals)
}

// writeListings makes the collection hold exactly listings: every listing
// is upserted by id and documents for ids no longer present are deleted.
func (c *Client) writeListings(ctx context.Context, collection string, listings []models.Listing) error {
	collectionRef := c.client.Collection(collection)

	stale := make(map[string]*firestore.DocumentRef)
	refs := collectionRef.DocumentRefs(ctx)
	for {
		ref, err := refs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", collection, err)
		}
		stale[ref.ID] = ref
	}

	bulkWriter := c.client.BulkWriter(ctx)

	var jobs []*firestore.BulkWriterJob
	for _, l := range listings {
		docRef := collectionRef.NewDoc()
		if l.ID != "" {
			docRef = collectionRef.Doc(string(l.ID))
		}
		delete(stale, docRef.ID)
		job, err := bulkWriter.Set(docRef, l)
		if err != nil {
			bulkWriter.End()
			return fmt.Errorf("failed to queue %s write for %s: %w", collection, l.ID, err)
		}
		jobs = append(jobs, job)
	}
	for id, ref := range stale {
		job, err := bulkWriter.Delete(ref)
		if err != nil {
			bulkWriter.End()
			return fmt.Errorf("failed to queue %s delete for %s: %w", collection, id, err)
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write %s: %w", collection, err)
		}
	}
	if len(stale) > 0 {
		slog.Info("Deleted stale documents", "collection", collection, "count", len(stale))
	}
	return nil
}

// AppendHistory stores entry and trims the history to maxEntries.
func (c *Client) AppendHistory(ctx context.Context, entry models.StatsHistoryEntry, maxEntries int) error {
	docRef := c.client.Collection(historyCollection).Doc(entry.Date)
	if _, err := docRef.Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to write history entry %s: %w", entry.Date, err)
	}
	if maxEntries <= 0 {
		return nil
	}
	return c.TrimHistory(ctx, maxEntries)
}

// TrimHistory deletes the oldest history entries beyond maxEntries.
func (c *Client) TrimHistory(ctx context.Context, maxEntries int) error {
	collectionRef := c.client.Collection(historyCollection)

	countSnapshot, err := collectionRef.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to count history entries: %w", err)
	}
	countValue, ok := countSnapshot["all"]
	if !ok {
		return fmt.Errorf("count aggregation result was invalid: 'all' key missing")
	}
	current, err := aggregateCount(countValue)
	if err != nil {
		return err
	}
	if current <= maxEntries {
		return nil
	}

	numToDelete := current - maxEntries
	slog.Info("Trimming stats history", "current", current, "max", maxEntries, "deleting", numToDelete)

	iter := collectionRef.OrderBy("date", firestore.Asc).Limit(numToDelete).Documents(ctx)
	defer iter.Stop()

	bulkWriter := c.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate history for trimming: %w", err)
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			slog.Warn("Failed to queue history delete", "id", doc.Ref.ID, "error", err)
		}
	}
	bulkWriter.Flush()
	return nil
}

// aggregateCount unwraps a count aggregation result, which the client
// returns either as int64 or as a raw protobuf value.
func aggregateCount(v interface{}) (int, error) {
	switch val := v.(type) {
	case int64:
		return int(val), nil
	case *firestorepb.Value:
		return int(val.GetIntegerValue()), nil
	default:
		return 0, fmt.Errorf("count aggregation result has unexpected type %T", v)
	}
}
