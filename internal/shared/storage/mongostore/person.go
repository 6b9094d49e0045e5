package mongostore

import (
	"context"
	"time"

	"afro-class/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// PersonStore
// ============================================================================

func (s *Store) CreatePerson(ctx context.Context, role model.Role, p *model.Person) error {
	col, err := s.roleCol(role)
	if err != nil {
		return err
	}
	return insertOne(ctx, col, p)
}

func (s *Store) GetPersonByID(ctx context.Context, role model.Role, id string) (*model.Person, error) {
	col, err := s.roleCol(role)
	if err != nil {
		return nil, err
	}
	return findOne[model.Person](ctx, col, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetPersonByEmail(ctx context.Context, role model.Role, email string) (*model.Person, error) {
	col, err := s.roleCol(role)
	if err != nil {
		return nil, err
	}
	return findOne[model.Person](ctx, col, bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetPersonByUserName(ctx context.Context, role model.Role, userName string) (*model.Person, error) {
	col, err := s.roleCol(role)
	if err != nil {
		return nil, err
	}
	return findOne[model.Person](ctx, col, bson.D{{Key: "userName", Value: userName}})
}

func (s *Store) ListPeople(ctx context.Context, role model.Role) ([]*model.Person, error) {
	col, err := s.roleCol(role)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[model.Person](ctx, col, bson.D{}, opts)
}

func (s *Store) UpdatePerson(ctx context.Context, role model.Role, id string, update *model.PersonUpdate) (*model.Person, error) {
	col, err := s.roleCol(role)
	if err != nil {
		return nil, err
	}
	return updateAndReturn[model.Person](ctx, col, id, personSetFields(update))
}

func (s *Store) DeletePerson(ctx context.Context, role model.Role, id string) (*model.Person, error) {
	col, err := s.roleCol(role)
	if err != nil {
		return nil, err
	}
	return deleteAndReturn[model.Person](ctx, col, id)
}

// personSetFields 将 PersonUpdate 转换为 $set 文档，updatedAt 总是刷新
func personSetFields(u *model.PersonUpdate) bson.D {
	set := bson.D{}
	add := func(key string, value interface{}) {
		set = append(set, bson.E{Key: key, Value: value})
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.UserName != nil {
		add("userName", *u.UserName)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Gender != nil {
		add("gender", *u.Gender)
	}
	if u.Bio != nil {
		add("bio", *u.Bio)
	}
	if u.Department != nil {
		add("department", *u.Department)
	}
	if u.Nationality != nil {
		add("nationality", *u.Nationality)
	}
	if u.Avatar != nil {
		add("avatar", *u.Avatar)
	}
	if u.PasswordHash != nil {
		add("passwordHash", *u.PasswordHash)
	}
	if u.Grade != nil {
		add("grade", *u.Grade)
	}
	if u.Subjects != nil {
		add("subjects", u.Subjects)
	}
	add("updatedAt", time.Now().UTC())
	return set
}
