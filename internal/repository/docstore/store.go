// Package docstore serves the Store contract from Firestore collections.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bloodalert/internal/models"
	"bloodalert/internal/repository"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	colUsers         = "users"
	colDonations     = "donations"
	colRequests      = "bloodRequests"
	colNotifications = "notifications"
	colCampaigns     = "bloodCampaigns"
)

type Store struct {
	client *firestore.Client
}

var _ repository.Store = (*Store)(nil)

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error { return s.client.Close() }

func notFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	return err
}

// create writes v under a generated document id and returns that id.
func (s *Store) create(ctx context.Context, col string, id string, v any) (string, error) {
	ref := s.client.Collection(col).NewDoc()
	if id != "" {
		ref = s.client.Collection(col).Doc(id)
	}
	if _, err := ref.Create(ctx, v); err != nil {
		return "", fmt.Errorf("firestore create %s: %w", col, err)
	}
	return ref.ID, nil
}

func (s *Store) update(ctx context.Context, col, id string, updates []firestore.Update) error {
	_, err := s.client.Collection(col).Doc(id).Update(ctx, updates)
	return notFound(err)
}

// each decodes every document of q into a fresh T and hands it to fn.
func each[T any](ctx context.Context, q firestore.Query, fn func(id string, v T)) error {
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		fn(doc.Ref.ID, v)
	}
}

func get[T any](ctx context.Context, ref *firestore.DocumentRef) (*T, error) {
	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Path, err)
	}
	return &v, nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Email = strings.ToLower(u.Email)
	id, err := s.create(ctx, colUsers, u.ID, u)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := get[models.User](ctx, s.client.Collection(colUsers).Doc(id))
	if err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var found *models.User
	q := s.client.Collection(colUsers).Where("email", "==", strings.ToLower(email)).Limit(1)
	err := each(ctx, q, func(id string, u models.User) {
		u.ID = id
		found = &u
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var list []models.User
	q := s.client.Collection(colUsers).OrderBy("createdAt", firestore.Desc)
	err := each(ctx, q, func(id string, u models.User) {
		u.ID = id
		list = append(list, u)
	})
	return list, err
}

func (s *Store) ListUsersByBloodGroup(ctx context.Context, bloodGroup string) ([]models.User, error) {
	var list []models.User
	q := s.client.Collection(colUsers).Where("bloodGroup", "==", bloodGroup)
	err := each(ctx, q, func(id string, u models.User) {
		u.ID = id
		list = append(list, u)
	})
	return list, err
}

func (s *Store) UpdateFCMToken(ctx context.Context, id, token string) error {
	return s.update(ctx, colUsers, id, []firestore.Update{
		{Path: "fcmToken", Value: token},
		{Path: "updatedAt", Value: time.Now()},
	})
}

// Donations

func (s *Store) CreateDonation(ctx context.Context, d *models.Donation) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	id, err := s.create(ctx, colDonations, d.ID, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (s *Store) ListDonations(ctx context.Context) ([]models.Donation, error) {
	var list []models.Donation
	q := s.client.Collection(colDonations).OrderBy("createdAt", firestore.Desc)
	err := each(ctx, q, func(id string, d models.Donation) {
		d.ID = id
		list = append(list, d)
	})
	return list, err
}

// Blood requests

func (s *Store) CreateBloodRequest(ctx context.Context, r *models.BloodRequest) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	id, err := s.create(ctx, colRequests, r.ID, r)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (s *Store) GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	r, err := get[models.BloodRequest](ctx, s.client.Collection(colRequests).Doc(id))
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}

func (s *Store) ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error) {
	var list []models.BloodRequest
	q := s.client.Collection(colRequests).OrderBy("createdAt", firestore.Desc)
	err := each(ctx, q, func(id string, r models.BloodRequest) {
		r.ID = id
		list = append(list, r)
	})
	return list, err
}

func (s *Store) UpdateBloodRequestStatus(ctx context.Context, id, st string) error {
	return s.update(ctx, colRequests, id, []firestore.Update{{Path: "status", Value: st}})
}

// Campaigns

func (s *Store) CreateCampaign(ctx context.Context, c *models.BloodCampaign) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	id, err := s.create(ctx, colCampaigns, c.ID, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*models.BloodCampaign, error) {
	c, err := get[models.BloodCampaign](ctx, s.client.Collection(colCampaigns).Doc(id))
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context) ([]models.BloodCampaign, error) {
	var list []models.BloodCampaign
	err := each(ctx, s.client.Collection(colCampaigns).Query, func(id string, c models.BloodCampaign) {
		c.ID = id
		list = append(list, c)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Active != list[j].Active {
			return list[i].Active
		}
		return list[i].StartsAt.After(list[j].StartsAt)
	})
	return list, nil
}

func (s *Store) UpdateCampaignBanner(ctx context.Context, id, url string) error {
	return s.update(ctx, colCampaigns, id, []firestore.Update{{Path: "bannerUrl", Value: url}})
}

// Notifications

func (s *Store) visibleTo(userID string) firestore.Query {
	return s.client.Collection(colNotifications).WhereEntity(firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "userId", Operator: "==", Value: userID},
			firestore.PropertyFilter{Path: "isGlobal", Operator: "==", Value: true},
		},
	})
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	id, err := s.create(ctx, colNotifications, n.ID, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// ListNotifications sorts client-side; OR filters cannot be combined with
// an ordering without a composite index.
func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := each(ctx, s.visibleTo(userID), func(id string, n models.Notification) {
		if n.HiddenFrom(userID) {
			return
		}
		n.ID = id
		n.ViewFor(userID)
		list = append(list, n)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := each(ctx, s.visibleTo(userID), func(_ string, v models.Notification) {
		if v.HiddenFrom(userID) {
			return
		}
		v.ViewFor(userID)
		if !v.Read {
			n++
		}
	})
	return n, err
}

// readUpdate marks n read for userID: globals collect readers in readBy.
func readUpdate(n *models.Notification, userID string) []firestore.Update {
	if n.IsGlobal {
		return []firestore.Update{{Path: "readBy", Value: firestore.ArrayUnion(userID)}}
	}
	return []firestore.Update{{Path: "read", Value: true}}
}

// owned loads a notification and checks it is visible to userID.
func (s *Store) owned(ctx context.Context, userID, id string) (*firestore.DocumentRef, *models.Notification, error) {
	ref := s.client.Collection(colNotifications).Doc(id)
	n, err := get[models.Notification](ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if n.IsGlobal {
		if n.HiddenFrom(userID) {
			return nil, nil, repository.ErrNotFound
		}
	} else if n.UserID != userID {
		return nil, nil, repository.ErrNotFound
	}
	return ref, n, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	ref, n, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	_, err = ref.Update(ctx, readUpdate(n, userID))
	return notFound(err)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	it := s.visibleTo(userID).Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			bw.End()
			return err
		}
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			bw.End()
			return fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		if n.HiddenFrom(userID) {
			continue
		}
		job, err := bw.Update(doc.Ref, readUpdate(&n, userID))
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
	}
	return nil
}

// DeleteNotification removes a personal document. A global one stays and
// only records userID in hiddenFor.
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	ref, n, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if n.IsGlobal {
		_, err = ref.Update(ctx, []firestore.Update{{Path: "hiddenFor", Value: firestore.ArrayUnion(userID)}})
		return notFound(err)
	}
	_, err = ref.Delete(ctx, firestore.Exists)
	return notFound(err)
}

// Stats

func (s *Store) count(ctx context.Context, col string) (int64, error) {
	res, err := s.client.Collection(col).NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", col, err)
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count %s: unexpected result type %T", col, res["all"])
	}
	return v.GetIntegerValue(), nil
}

func (s *Store) Summary(ctx context.Context) (*models.Summary, error) {
	var sum models.Summary
	counts := []struct {
		col string
		dst *int64
	}{
		{colUsers, &sum.TotalUsers},
		{colDonations, &sum.TotalDonations},
		{colRequests, &sum.TotalRequests},
		{colCampaigns, &sum.TotalCampaigns},
	}
	for _, c := range counts {
		n, err := s.count(ctx, c.col)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &sum, nil
}
