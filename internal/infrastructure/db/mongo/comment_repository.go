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

type CommentRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{db: db, coll: db.Collection(collectionComments)}
}

type mongoComment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ReviewID  primitive.ObjectID `bson:"review_id"`
	AuthorID  primitive.ObjectID `bson:"author_id"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (m *mongoComment) toDomain(author string) *domain.Comment {
	return &domain.Comment{
		ID:        m.ID.Hex(),
		ReviewID:  m.ReviewID.Hex(),
		AuthorID:  m.AuthorID.Hex(),
		Author:    author,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func (r *CommentRepository) Insert(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	rid, ok := objectID(c.ReviewID)
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	aid, ok := objectID(c.AuthorID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	doc := mongoComment{ReviewID: rid, AuthorID: aid, Text: c.Text, CreatedAt: c.CreatedAt}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return r.withAuthor(ctx, &doc)
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, commentID string) (*domain.Comment, error) {
	rid, ok1 := objectID(reviewID)
	cid, ok2 := objectID(commentID)
	if !ok1 || !ok2 {
		return nil, domain.ErrCommentNotFound
	}
	var doc mongoComment
	if err := r.coll.FindOne(ctx, bson.M{"_id": cid, "review_id": rid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return r.withAuthor(ctx, &doc)
}

func (r *CommentRepository) List(ctx context.Context, reviewID string, page ports.PageRequest) ([]*domain.Comment, int64, error) {
	rid, ok := objectID(reviewID)
	if !ok {
		return nil, 0, domain.ErrReviewNotFound
	}
	docs, total, err := findPage[mongoComment](ctx, r.coll, bson.M{"review_id": rid}, page,
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
	out := make([]*domain.Comment, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain(names[docs[i].AuthorID])
	}
	return out, total, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	cid, ok := objectID(c.ID)
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": cid}, bson.M{"$set": bson.M{"text": c.Text}})
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, reviewID, commentID string) error {
	rid, ok1 := objectID(reviewID)
	cid, ok2 := objectID(commentID)
	if !ok1 || !ok2 {
		return domain.ErrCommentNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": cid, "review_id": rid})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) withAuthor(ctx context.Context, doc *mongoComment) (*domain.Comment, error) {
	names, err := usernames(ctx, r.db, []primitive.ObjectID{doc.AuthorID})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(names[doc.AuthorID]), nil
}
