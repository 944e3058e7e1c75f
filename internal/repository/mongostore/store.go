// Package mongostore serves the Store contract from MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodalert/internal/models"
	"bloodalert/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	donations     *mongo.Collection
	requests      *mongo.Collection
	campaigns     *mongo.Collection
	notifications *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, client.Database(database)), nil
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:        client,
		users:         db.Collection("users"),
		donations:     db.Collection("donations"),
		requests:      db.Collection("bloodRequests"),
		campaigns:     db.Collection("bloodCampaigns"),
		notifications: db.Collection("notifications"),
	}
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return primitive.NewObjectID().Hex()
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var list []T
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var v T
	if err := col.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func setOne(ctx context.Context, col *mongo.Collection, filter any, set bson.M) error {
	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = newID(u.ID)
	u.Email = strings.ToLower(u.Email)
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, u)
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.users, bson.M{}, options.Find().SetSort(newestFirst))
}

func (s *Store) ListUsersByBloodGroup(ctx context.Context, bloodGroup string) ([]models.User, error) {
	return findAll[models.User](ctx, s.users, bson.M{"bloodGroup": bloodGroup}, options.Find())
}

func (s *Store) UpdateFCMToken(ctx context.Context, id, token string) error {
	return setOne(ctx, s.users, bson.M{"_id": id}, bson.M{"fcmToken": token, "updatedAt": time.Now()})
}

// Donations

func (s *Store) CreateDonation(ctx context.Context, d *models.Donation) error {
	d.ID = newID(d.ID)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := s.donations.InsertOne(ctx, d)
	return err
}

func (s *Store) ListDonations(ctx context.Context) ([]models.Donation, error) {
	return findAll[models.Donation](ctx, s.donations, bson.M{}, options.Find().SetSort(newestFirst))
}

// Blood requests

func (s *Store) CreateBloodRequest(ctx context.Context, r *models.BloodRequest) error {
	r.ID = newID(r.ID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.requests.InsertOne(ctx, r)
	return err
}

func (s *Store) GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	return findOne[models.BloodRequest](ctx, s.requests, bson.M{"_id": id})
}

func (s *Store) ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error) {
	return findAll[models.BloodRequest](ctx, s.requests, bson.M{}, options.Find().SetSort(newestFirst))
}

func (s *Store) UpdateBloodRequestStatus(ctx context.Context, id, status string) error {
	return setOne(ctx, s.requests, bson.M{"_id": id}, bson.M{"status": status})
}

// Campaigns

func (s *Store) CreateCampaign(ctx context.Context, c *models.BloodCampaign) error {
	c.ID = newID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.campaigns.InsertOne(ctx, c)
	return err
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*models.BloodCampaign, error) {
	return findOne[models.BloodCampaign](ctx, s.campaigns, bson.M{"_id": id})
}

func (s *Store) ListCampaigns(ctx context.Context) ([]models.BloodCampaign, error) {
	sortOrder := bson.D{{Key: "active", Value: -1}, {Key: "startsAt", Value: -1}}
	return findAll[models.BloodCampaign](ctx, s.campaigns, bson.M{}, options.Find().SetSort(sortOrder))
}

func (s *Store) UpdateCampaignBanner(ctx context.Context, id, url string) error {
	return setOne(ctx, s.campaigns, bson.M{"_id": id}, bson.M{"bannerUrl": url})
}

// Notifications

func personal(userID string) bson.M {
	return bson.M{"userId": userID, "isGlobal": bson.M{"$ne": true}}
}

// global matches broadcast rows userID has not hidden.
func global(userID string) bson.M {
	return bson.M{"isGlobal": true, "hiddenFor": bson.M{"$ne": userID}}
}

func visibleTo(userID string) bson.M {
	return bson.M{"$or": bson.A{personal(userID), global(userID)}}
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = newID(n.ID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.notifications.InsertOne(ctx, n)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	list, err := findAll[models.Notification](ctx, s.notifications, visibleTo(userID), opts)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].ViewFor(userID)
	}
	return list, nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int64, error) {
	own := personal(userID)
	own["read"] = false
	shared := global(userID)
	shared["readBy"] = bson.M{"$ne": userID}
	return s.notifications.CountDocuments(ctx, bson.M{"$or": bson.A{own, shared}})
}

func (s *Store) visible(ctx context.Context, userID, id string) (*models.Notification, error) {
	filter := visibleTo(userID)
	filter["_id"] = id
	return findOne[models.Notification](ctx, s.notifications, filter)
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	n, err := s.visible(ctx, userID, id)
	if err != nil {
		return err
	}
	if n.IsGlobal {
		_, err = s.notifications.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"readBy": userID}})
		return err
	}
	return setOne(ctx, s.notifications, bson.M{"_id": id}, bson.M{"read": true})
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	own := personal(userID)
	own["read"] = false
	if _, err := s.notifications.UpdateMany(ctx, own, bson.M{"$set": bson.M{"read": true}}); err != nil {
		return err
	}
	shared := global(userID)
	shared["readBy"] = bson.M{"$ne": userID}
	_, err := s.notifications.UpdateMany(ctx, shared, bson.M{"$addToSet": bson.M{"readBy": userID}})
	return err
}

// DeleteNotification removes a personal row and adds userID to a global
// row's hiddenFor.
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	n, err := s.visible(ctx, userID, id)
	if err != nil {
		return err
	}
	if n.IsGlobal {
		_, err = s.notifications.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"hiddenFor": userID}})
		return err
	}
	res, err := s.notifications.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Stats

func (s *Store) Summary(ctx context.Context) (*models.Summary, error) {
	var sum models.Summary
	counts := []struct {
		col *mongo.Collection
		dst *int64
	}{
		{s.users, &sum.TotalUsers},
		{s.donations, &sum.TotalDonations},
		{s.requests, &sum.TotalRequests},
		{s.campaigns, &sum.TotalCampaigns},
	}
	for _, c := range counts {
		n, err := c.col.CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.col.Name(), err)
		}
		*c.dst = n
	}
	return &sum, nil
}
