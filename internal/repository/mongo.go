package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per link with its views embedded; views are
// appended with $push so concurrent visits never overwrite each other.
type MongoStore struct {
	client *mongo.Client
	links  *mongo.Collection
	colls  *mongo.Collection
}

type linkDoc struct {
	Code      string     `bson:"code"`
	Type      string     `bson:"type"`
	URL       string     `bson:"url"`
	Password  string     `bson:"password,omitempty"`
	Users     []string   `bson:"users,omitempty"`
	Views     []visitDoc `bson:"views,omitempty"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

type visitDoc struct {
	User   string `bson:"user"`
	Result int    `bson:"result"`
	Date   int64  `bson:"date"`
}

func NewMongoStore(ctx context.Context, cfg config.MongoConfig, scope Scope) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(scope.Name())
	s := &MongoStore{
		client: client,
		links:  db.Collection("links"),
		colls:  db.Collection("collections"),
	}

	_, err = s.links.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_code"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create link indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) CreateLink(ctx context.Context, link *models.Link) error {
	_, err := s.links.InsertOne(ctx, toLinkDoc(link))
	if err == nil {
		return nil
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrCodeExists
	}

	return fmt.Errorf("failed to create link: %w", err)
}

func (s *MongoStore) GetLink(ctx context.Context, code string) (*models.Link, error) {
	var doc linkDoc
	err := s.links.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err == nil {
		return fromLinkDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLinkNotFound
	}

	return nil, fmt.Errorf("failed to get link: %w", err)
}

func (s *MongoStore) UpdateLink(ctx context.Context, link *models.Link) error {
	set := bson.M{
		"type":      string(link.Type),
		"url":       link.URL,
		"updatedAt": link.Updated.UTC(),
	}
	unset := bson.M{}

	if link.Password != "" {
		set["password"] = link.Password
	} else {
		unset["password"] = ""
	}
	if len(link.Users) > 0 {
		set["users"] = link.Users
	} else {
		unset["users"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := s.links.UpdateOne(ctx, bson.M{"code": link.Code}, update)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (s *MongoStore) DeleteLink(ctx context.Context, code string) error {
	result, err := s.links.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (s *MongoStore) LinkExists(ctx context.Context, code string) (bool, error) {
	n, err := s.links.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) ListLinks(ctx context.Context) ([]*models.Link, error) {
	cursor, err := s.links.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []linkDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode links: %w", err)
	}

	links := make([]*models.Link, 0, len(docs))
	for _, doc := range docs {
		links = append(links, fromLinkDoc(doc))
	}
	return links, nil
}

func (s *MongoStore) CollectionExists(ctx context.Context) (bool, error) {
	n, err := s.colls.CountDocuments(ctx, bson.M{"_id": LinksCollection}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) CreateCollection(ctx context.Context, seed ...*models.Link) error {
	_, err := s.colls.UpdateOne(ctx,
		bson.M{"_id": LinksCollection},
		bson.M{"$setOnInsert": bson.M{"createdAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	for _, link := range seed {
		if err := s.CreateLink(ctx, link); err != nil && !errors.Is(err, ErrCodeExists) {
			return fmt.Errorf("failed to seed link %s: %w", link.Code, err)
		}
	}

	return nil
}

func (s *MongoStore) AppendView(ctx context.Context, code string, visit models.Visit) error {
	update := bson.M{"$push": bson.M{"views": visitDoc(visit)}}

	result, err := s.links.UpdateOne(ctx, bson.M{"code": code}, update)
	if err != nil {
		return fmt.Errorf("failed to append view: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (s *MongoStore) ListViews(ctx context.Context, code string) ([]models.Visit, error) {
	link, err := s.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}
	return link.Views, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

func toLinkDoc(link *models.Link) linkDoc {
	return linkDoc{
		Code:      link.Code,
		Type:      string(link.Type),
		URL:       link.URL,
		Password:  link.Password,
		Users:     link.Users,
		CreatedAt: link.Created.UTC(),
		UpdatedAt: link.Updated.UTC(),
	}
}

func fromLinkDoc(doc linkDoc) *models.Link {
	views := make([]models.Visit, 0, len(doc.Views))
	for _, v := range doc.Views {
		views = append(views, models.Visit(v))
	}

	return &models.Link{
		Code:     doc.Code,
		Type:     models.LinkType(doc.Type),
		URL:      doc.URL,
		Password: doc.Password,
		Users:    doc.Users,
		Views:    views,
		Created:  doc.CreatedAt,
		Updated:  doc.UpdatedAt,
	}
}
