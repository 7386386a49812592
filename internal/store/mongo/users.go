package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	d := toUserDoc(u)
	d.Email = strings.ToLower(d.Email)
	_, err := s.users.InsertOne(ctx, d)
	return mapErr(err)
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var d userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

// updateUser applies update to one user and returns the result.
func (s *Store) updateUser(ctx context.Context, id string, set bson.M) (*model.User, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d userDoc
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (*model.User, error) {
	set := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	str("first_name", upd.FirstName)
	str("last_name", upd.LastName)
	str("department", upd.Department)
	str("course", upd.Course)
	str("current_company", upd.CurrentCompany)
	str("designation", upd.Designation)
	str("city", upd.City)
	str("country", upd.Country)
	str("linkedin", upd.LinkedIn)
	str("bio", upd.Bio)
	if upd.GraduationYear != nil {
		set["graduation_year"] = *upd.GraduationYear
	}
	if upd.Skills != nil {
		set["skills"] = upd.Skills
	}
	return s.updateUser(ctx, id, set)
}

func (s *Store) SetMentorProfile(ctx context.Context, id string, p model.MentorProfile) error {
	_, err := s.updateUser(ctx, id, bson.M{"is_mentor": true, "mentor": toMentorDoc(p)})
	return err
}

func (s *Store) SetVerified(ctx context.Context, id string, verified bool) (*model.User, error) {
	return s.updateUser(ctx, id, bson.M{"is_verified": verified})
}

func (s *Store) SetSuspended(ctx context.Context, id string, suspended bool) (*model.User, error) {
	return s.updateUser(ctx, id, bson.M{"is_suspended": suspended})
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return matched(s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": at}}))
}

func (s *Store) AddConnection(ctx context.Context, userID, otherID string) error {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": []string{userID, otherID}}})
	if err != nil {
		return err
	}
	if n != 2 {
		return store.ErrNotFound
	}
	for _, pair := range [][2]string{{userID, otherID}, {otherID, userID}} {
		_, err := s.users.UpdateOne(ctx,
			bson.M{"_id": pair[0]},
			bson.M{"$addToSet": bson.M{"connections": pair[1]}},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, int, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Verified != nil {
		filter["is_verified"] = *f.Verified
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Batch != 0 {
		filter["graduation_year"] = f.Batch
	}
	if f.City != "" {
		filter["city"] = ci(f.City)
	}
	if f.Company != "" {
		filter["current_company"] = ci(f.Company)
	}

	total, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "created_at", Value: -1}}
	if f.ByGraduation {
		sort = bson.D{{Key: "graduation_year", Value: -1}, {Key: "created_at", Value: -1}}
	}
	users, err := findAll(ctx, s.users, filter, findOpts(sort, f.Page), (*userDoc).model)
	return users, int(total), err
}

func (s *Store) ListMentors(ctx context.Context, f store.MentorFilter) ([]model.User, int, error) {
	filter := bson.M{"is_mentor": true, "is_verified": true}
	if f.Expertise != "" {
		filter["mentor.expertise"] = f.Expertise
	}
	total, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	users, err := findAll(ctx, s.users, filter, findOpts(bson.D{{Key: "created_at", Value: 1}}, f.Page), (*userDoc).model)
	return users, int(total), err
}

func (s *Store) SearchUsers(ctx context.Context, q string, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 20
	}
	re := ci(q)
	filter := bson.M{
		"is_verified": true,
		"$or": bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"current_company": re},
			bson.M{"designation": re},
		},
	}
	return findAll(ctx, s.users, filter,
		findOpts(bson.D{{Key: "created_at", Value: 1}}, store.Page{Page: 1, Limit: limit}), (*userDoc).model)
}
