package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoSocial struct {
	Twitter   string `bson:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty"`
	YouTube   string `bson:"youtube,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
}

type mongoExperience struct {
	ID          string     `bson:"id"`
	Title       string     `bson:"title"`
	Company     string     `bson:"company"`
	Location    string     `bson:"location,omitempty"`
	From        time.Time  `bson:"from"`
	To          *time.Time `bson:"to,omitempty"`
	Current     bool       `bson:"current"`
	Description string     `bson:"description,omitempty"`
}

type mongoEducation struct {
	ID           string     `bson:"id"`
	School       string     `bson:"school"`
	Degree       string     `bson:"degree"`
	FieldOfStudy string     `bson:"fieldofstudy"`
	From         time.Time  `bson:"from"`
	To           *time.Time `bson:"to,omitempty"`
	Current      bool       `bson:"current"`
	Description  string     `bson:"description,omitempty"`
}

type mongoUser struct {
	ID     string `bson:"_id"`
	Name   string `bson:"name"`
	Email  string `bson:"email,omitempty"`
	Avatar string `bson:"avatar,omitempty"`
}

// mongoProfile is a profiles document keyed by the owner id. Owners is only
// filled by the $lookup stage of reads.
type mongoProfile struct {
	OwnerID        string            `bson:"_id"`
	Company        string            `bson:"company,omitempty"`
	Website        string            `bson:"website,omitempty"`
	Location       string            `bson:"location,omitempty"`
	Bio            string            `bson:"bio,omitempty"`
	Status         string            `bson:"status,omitempty"`
	GitHubUsername string            `bson:"githubusername,omitempty"`
	Skills         []string          `bson:"skills,omitempty"`
	Social         mongoSocial       `bson:"social,omitempty"`
	Experience     []mongoExperience `bson:"experience"`
	Education      []mongoEducation  `bson:"education"`
	CreatedAt      time.Time         `bson:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt"`
	Owners         []mongoUser       `bson:"owners,omitempty"`
}

// MongoStore implements Store on MongoDB. Mutations use single-document
// atomic operators, so no read-modify-write round trip is needed.
type MongoStore struct {
	profiles *mongo.Collection
	users    *mongo.Collection
	posts    *mongo.Collection
}

// NewMongoStore returns a store using the profiles, users and posts
// collections of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		profiles: db.Collection(profilesCollection),
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
	}
}

// EnsureIndexes creates the post author index the account delete relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: postAuthorField, Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	return nil
}

// readPipeline joins each profile with its owner's user record.
func readPipeline(match bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	return append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owners"},
		}}},
	)
}

func (s *MongoStore) Get(ctx context.Context, ownerID string) (*Profile, error) {
	profiles, err := s.read(ctx, bson.D{{Key: "_id", Value: ownerID}})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

func (s *MongoStore) List(ctx context.Context) ([]Profile, error) {
	return s.read(ctx, nil)
}

func (s *MongoStore) read(ctx context.Context, match bson.D) ([]Profile, error) {
	cur, err := s.profiles.Aggregate(ctx, readPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var docs []mongoProfile
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	out := make([]Profile, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toProfile())
	}
	return out, nil
}

// Upsert applies u with $set and seeds new documents through $setOnInsert.
// Social links are set per key so unspecified links survive.
func (s *MongoStore) Upsert(ctx context.Context, ownerID string, u Update) (*Profile, error) {
	now := time.Now().UTC()
	set := bson.D{{Key: "updatedAt", Value: now}}
	for key, v := range map[string]*string{
		"company":        u.Company,
		"website":        u.Website,
		"location":       u.Location,
		"bio":            u.Bio,
		"status":         u.Status,
		"githubusername": u.GitHubUsername,
	} {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}
	if u.Skills != nil {
		set = append(set, bson.E{Key: "skills", Value: u.Skills})
	}
	for key, v := range u.socialFields() {
		set = append(set, bson.E{Key: "social." + key, Value: v})
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "createdAt", Value: now},
			{Key: "experience", Value: bson.A{}},
			{Key: "education", Value: bson.A{}},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoProfile
	if err := s.profiles.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: ownerID}}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return doc.toProfile(), nil
}

// PrependExperience pushes e to the front of the experience array.
func (s *MongoStore) PrependExperience(ctx context.Context, ownerID string, e Experience) (*Profile, error) {
	return s.modify(ctx, ownerID, "$push", bson.D{{Key: "experience", Value: bson.D{
		{Key: "$each", Value: bson.A{mongoExperience(e)}},
		{Key: "$position", Value: 0},
	}}})
}

func (s *MongoStore) RemoveExperience(ctx context.Context, ownerID, entryID string) (*Profile, error) {
	return s.modify(ctx, ownerID, "$pull", bson.D{{Key: "experience", Value: bson.D{{Key: "id", Value: entryID}}}})
}

// PrependEducation pushes e to the front of the education array.
func (s *MongoStore) PrependEducation(ctx context.Context, ownerID string, e Education) (*Profile, error) {
	return s.modify(ctx, ownerID, "$push", bson.D{{Key: "education", Value: bson.D{
		{Key: "$each", Value: bson.A{mongoEducation(e)}},
		{Key: "$position", Value: 0},
	}}})
}

func (s *MongoStore) RemoveEducation(ctx context.Context, ownerID, entryID string) (*Profile, error) {
	return s.modify(ctx, ownerID, "$pull", bson.D{{Key: "education", Value: bson.D{{Key: "id", Value: entryID}}}})
}

func (s *MongoStore) modify(ctx context.Context, ownerID, operator string, arg bson.D) (*Profile, error) {
	update := bson.D{
		{Key: operator, Value: arg},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoProfile
	err := s.profiles.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: ownerID}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toProfile(), nil
}

// DeleteAccount removes posts, profile and user in that order. Steps are not
// rolled back; the error names the step that failed.
func (s *MongoStore) DeleteAccount(ctx context.Context, ownerID string) error {
	if _, err := s.posts.DeleteMany(ctx, bson.D{{Key: postAuthorField, Value: ownerID}}); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if _, err := s.profiles.DeleteOne(ctx, bson.D{{Key: "_id", Value: ownerID}}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if _, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: ownerID}}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// PutUser upserts a user record for seeding and tests.
func (s *MongoStore) PutUser(ctx context.Context, u User) error {
	_, err := s.users.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}},
		mongoUser(u), options.Replace().SetUpsert(true))
	return err
}

// PutPost upserts a post for seeding and tests.
func (s *MongoStore) PutPost(ctx context.Context, p Post) error {
	_, err := s.posts.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}},
		bson.D{{Key: postAuthorField, Value: p.UserID}, {Key: "text", Value: p.Text}},
		options.Replace().SetUpsert(true))
	return err
}

// CountPosts returns the number of posts authored by userID.
func (s *MongoStore) CountPosts(ctx context.Context, userID string) (int64, error) {
	return s.posts.CountDocuments(ctx, bson.D{{Key: postAuthorField, Value: userID}})
}

func (d *mongoProfile) toProfile() *Profile {
	p := &Profile{
		Owner:          Owner{ID: d.OwnerID},
		Company:        d.Company,
		Website:        d.Website,
		Location:       d.Location,
		Bio:            d.Bio,
		Status:         d.Status,
		GitHubUsername: d.GitHubUsername,
		Skills:         d.Skills,
		Social:         Social(d.Social),
		Experience:     make([]Experience, len(d.Experience)),
		Education:      make([]Education, len(d.Education)),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	for i, e := range d.Experience {
		p.Experience[i] = Experience(e)
	}
	for i, e := range d.Education {
		p.Education[i] = Education(e)
	}
	if len(d.Owners) > 0 {
		p.Owner.Name = d.Owners[0].Name
		p.Owner.Avatar = d.Owners[0].Avatar
	}
	return p
}

var _ Store = (*MongoStore)(nil)
