package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusportal/student-records/internal/core/domain"
)

const collectionStudents = "students"

type StudentRepository struct {
	col *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{col: db.Collection(collectionStudents)}
}

// mongoStudent adds the document key to the domain record.
type mongoStudent struct {
	ID             primitive.ObjectID `bson:"_id"`
	domain.Student `bson:",inline"`
}

// Save upserts the student, assigning a new ID when it has none.
func (r *StudentRepository) Save(ctx context.Context, s *domain.Student) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoStudent(s)
	if err != nil {
		return err
	}

	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("save student: %w", err)
	}
	s.ID = doc.ID.Hex()
	return nil
}

// SaveAll upserts every student in a single unordered bulk write.
func (r *StudentRepository) SaveAll(ctx context.Context, students []*domain.Student) error {
	if len(students) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(students))
	ids := make([]primitive.ObjectID, 0, len(students))
	for _, s := range students {
		doc, err := toMongoStudent(s)
		if err != nil {
			return err
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
		ids = append(ids, doc.ID)
	}

	if _, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("save students: %w", err)
	}
	for i, s := range students {
		s.ID = ids[i].Hex()
	}
	return nil
}

func (r *StudentRepository) FindAll(ctx context.Context) ([]*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	defer cursor.Close(ctx)

	students := make([]*domain.Student, 0)
	for cursor.Next(ctx) {
		var doc mongoStudent
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode student: %w", err)
		}
		students = append(students, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStudentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoStudent
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteByID removes the student. Unknown ids are not an error.
func (r *StudentRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup index on student email.
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}})
	return err
}

func toMongoStudent(s *domain.Student) (mongoStudent, error) {
	doc := mongoStudent{Student: *s}
	if s.ID == "" {
		doc.ID = primitive.NewObjectID()
		return doc, nil
	}
	oid, err := primitive.ObjectIDFromHex(s.ID)
	if err != nil {
		return mongoStudent{}, fmt.Errorf("student id %q: %w", s.ID, domain.ErrStudentNotFound)
	}
	doc.ID = oid
	return doc, nil
}

func (m mongoStudent) toDomain() *domain.Student {
	s := m.Student
	s.ID = m.ID.Hex()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s
}
