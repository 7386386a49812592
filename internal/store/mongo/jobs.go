package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

func (s *Store) CreateJob(ctx context.Context, j *model.Job) error {
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	_, err := s.jobs.InsertOne(ctx, toJobDoc(j))
	return mapErr(err)
}

func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var d jobDoc
	if err := s.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) UpdateJob(ctx context.Context, j *model.Job) error {
	d := toJobDoc(j)
	set := bson.M{
		"title":                d.Title,
		"company":              d.Company,
		"location":             d.Location,
		"type":                 d.Type,
		"description":          d.Description,
		"requirements":         d.Requirements,
		"salary_min":           d.SalaryMin,
		"salary_max":           d.SalaryMax,
		"currency":             d.Currency,
		"experience":           d.Experience,
		"application_deadline": d.ApplicationDeadline,
		"application_link":     d.ApplicationLink,
		"contact_email":        d.ContactEmail,
		"status":               d.Status,
		"updated_at":           time.Now().UTC(),
	}
	return matched(s.jobs.UpdateOne(ctx, bson.M{"_id": j.ID}, bson.M{"$set": set}))
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	res, err := s.jobs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListJobs(ctx context.Context, f store.JobFilter) ([]model.Job, int, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Location != "" {
		filter["location"] = ci(f.Location)
	}
	if f.Company != "" {
		filter["company"] = ci(f.Company)
	}
	total, err := s.jobs.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	jobs, err := findAll(ctx, s.jobs, filter,
		findOpts(bson.D{{Key: "created_at", Value: -1}}, f.Page), (*jobDoc).model)
	return jobs, int(total), err
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return matched(s.jobs.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}))
}

func (s *Store) SetJobStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d jobDoc
	err := s.jobs.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}, opts).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) AddApplication(ctx context.Context, jobID string, a model.Application) error {
	err := matched(s.jobs.UpdateOne(ctx,
		bson.M{"_id": jobID, "applications.applicant_id": bson.M{"$ne": a.ApplicantID}},
		bson.M{"$push": bson.M{"applications": applicationDoc(a)}},
	))
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	// no match: the job is missing or the applicant is already listed
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return err
	}
	return store.ErrDuplicate
}
