package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// ReviewRepository relies on the unique (title_id, author_id) index for the
// one-review-per-author rule.
type ReviewRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{db: db, coll: db.Collection(collectionReviews)}
}

type mongoReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TitleID   primitive.ObjectID `bson:"title_id"`
	AuthorID  primitive.ObjectID `bson:"author_id"`
	Text      string             `bson:"text"`
	Score     int                `bson:"score"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (m *mongoReview) toDomain(author string) *domain.Review {
	return &domain.Review{
		ID:        m.ID.Hex(),
		TitleID:   m.TitleID.Hex(),
		AuthorID:  m.AuthorID.Hex(),
		Author:    author,
		Text:      m.Text,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
	}
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	titleID, ok := objectID(rv.TitleID)
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	authorID, ok := objectID(rv.AuthorID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	doc := mongoReview{TitleID: titleID, AuthorID: authorID, Text: rv.Text, Score: rv.Score, CreatedAt: rv.CreatedAt}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateReview
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return r.withAuthor(ctx, &doc)
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	tid, ok1 := objectID(titleID)
	rid, ok2 := objectID(reviewID)
	if !ok1 || !ok2 {
		return nil, domain.ErrReviewNotFound
	}
	var doc mongoReview
	if err := r.coll.FindOne(ctx, bson.M{"_id": rid, "title_id": tid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return r.withAuthor(ctx, &doc)
}

func (r *ReviewRepository) List(ctx context.Context, titleID string, page ports.PageRequest) ([]*domain.Review, int64, error) {
	tid, ok := objectID(titleID)
	if !ok {
		return nil, 0, domain.ErrTitleNotFound
	}
	docs, total, err := findPage[mongoReview](ctx, r.coll, bson.M{"title_id": tid}, page,
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.AuthorID
	}
	names, err := usernames(ctx, r.db, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Review, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain(names[docs[i].AuthorID])
	}
	return out, total, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	rid, ok := objectID(rv.ID)
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": rid},
		bson.M{"$set": bson.M{"text": rv.Text, "score": rv.Score}})
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrReviewNotFound
	}
	out := *rv
	return &out, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, titleID, reviewID string) error {
	tid, ok1 := objectID(titleID)
	rid, ok2 := objectID(reviewID)
	if !ok1 || !ok2 {
		return domain.ErrReviewNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": rid, "title_id": tid})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	if _, err := r.db.Collection(collectionComments).DeleteMany(ctx, bson.M{"review_id": rid}); err != nil {
		return fmt.Errorf("delete review comments: %w", err)
	}
	return nil
}

type scoreGroup struct {
	TitleID primitive.ObjectID `bson:"_id"`
	Count   int64              `bson:"count"`
	Sum     int64              `bson:"sum"`
}

// ScoreStats aggregates count and sum of scores per title server side.
func (r *ReviewRepository) ScoreStats(ctx context.Context, titleIDs []string) (map[string]ports.ScoreStats, error) {
	out := make(map[string]ports.ScoreStats, len(titleIDs))
	oids := objectIDs(titleIDs)
	if len(oids) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"title_id": bson.M{"$in": oids}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$title_id",
			"count": bson.M{"$sum": 1},
			"sum":   bson.M{"$sum": "$score"},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}
	var groups []scoreGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	for _, g := range groups {
		out[g.TitleID.Hex()] = ports.ScoreStats{Count: g.Count, Sum: g.Sum}
	}
	return out, nil
}

func (r *ReviewRepository) withAuthor(ctx context.Context, doc *mongoReview) (*domain.Review, error) {
	names, err := usernames(ctx, r.db, []primitive.ObjectID{doc.AuthorID})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(names[doc.AuthorID]), nil
}

// deleteReviews removes every review matching filter and the comments left
// hanging off them.
func deleteReviews(ctx context.Context, db *mongo.Database, filter bson.M) error {
	reviews := db.Collection(collectionReviews)
	ids, err := reviews.Distinct(ctx, "_id", filter)
	if err != nil {
		return fmt.Errorf("collect reviews: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := db.Collection(collectionComments).DeleteMany(ctx, bson.M{"review_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if _, err := reviews.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	return nil
}
