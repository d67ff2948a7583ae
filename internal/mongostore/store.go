// Package mongostore is the MongoDB back end for db.Store. Collections and
// camelCase field names match the existing gamesessions/scores/users data.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reflexa/internal/db"
)

const (
	roundsCollection = "gamesessions"
	scoresCollection = "scores"
	usersCollection  = "users"
	claimsCollection = "badgeclaims"
)

type roundDoc struct {
	RoundID   string    `bson:"roundId"`
	Wallet    string    `bson:"wallet"`
	DelayMs   int       `bson:"delayMs"`
	StartedAt time.Time `bson:"startedAt"`
	Status    string    `bson:"status"`
}

type scoreDoc struct {
	Wallet       string    `bson:"wallet"`
	RoundID      string    `bson:"roundId"`
	ReactionTime int       `bson:"reactionTime"`
	Score        int       `bson:"score"`
	Verified     bool      `bson:"verified"`
	Signature    string    `bson:"signature"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type userDoc struct {
	Wallet       string     `bson:"wallet"`
	TotalGames   int        `bson:"totalGames"`
	BestScore    int        `bson:"bestScore"`
	LastPlayedAt *time.Time `bson:"lastPlayedAt,omitempty"`
}

type Store struct {
	client *mongo.Client
	rounds *mongo.Collection
	scores *mongo.Collection
	users  *mongo.Collection
	claims *mongo.Collection
}

var _ db.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and ensures indexes on database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	mdb := client.Database(database)
	s := &Store{
		client: client,
		rounds: mdb.Collection(roundsCollection),
		scores: mdb.Collection(scoresCollection),
		users:  mdb.Collection(usersCollection),
		claims: mdb.Collection(claimsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.rounds, mongo.IndexModel{Keys: bson.D{{Key: "wallet", Value: 1}, {Key: "roundId", Value: 1}}, Options: unique}},
		{s.scores, mongo.IndexModel{Keys: bson.D{{Key: "roundId", Value: 1}}, Options: unique}},
		{s.scores, mongo.IndexModel{Keys: bson.D{{Key: "verified", Value: 1}, {Key: "score", Value: -1}, {Key: "createdAt", Value: 1}}}},
		{s.scores, mongo.IndexModel{Keys: bson.D{{Key: "wallet", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "wallet", Value: 1}}, Options: unique}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "bestScore", Value: -1}}}},
		{s.claims, mongo.IndexModel{Keys: bson.D{{Key: "wallet", Value: 1}, {Key: "badgeId", Value: 1}}, Options: unique}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("creating index on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) CreateRound(ctx context.Context, r db.RoundRecord) error {
	if r.Status == "" {
		r.Status = db.RoundStarted
	}
	_, err := s.rounds.InsertOne(ctx, roundDoc{
		RoundID:   r.RoundID,
		Wallet:    r.Wallet,
		DelayMs:   r.DelayMs,
		StartedAt: r.StartedAt,
		Status:    string(r.Status),
	})
	if err != nil {
		return fmt.Errorf("creating round: %w", err)
	}
	return nil
}

func (s *Store) GetRound(ctx context.Context, wallet, roundID string) (*db.RoundRecord, error) {
	var d roundDoc
	err := s.rounds.FindOne(ctx, bson.M{"wallet": wallet, "roundId": roundID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting round: %w", err)
	}
	return &db.RoundRecord{
		RoundID:   d.RoundID,
		Wallet:    d.Wallet,
		DelayMs:   d.DelayMs,
		StartedAt: d.StartedAt,
		Status:    db.RoundStatus(d.Status),
	}, nil
}

// CompleteRound relies on single-document atomicity: only one caller can match
// the STARTED filter.
func (s *Store) CompleteRound(ctx context.Context, wallet, roundID string) error {
	res, err := s.rounds.UpdateOne(ctx,
		bson.M{"wallet": wallet, "roundId": roundID, "status": string(db.RoundStarted)},
		bson.M{"$set": bson.M{"status": string(db.RoundCompleted)}},
	)
	if err != nil {
		return fmt.Errorf("completing round: %w", err)
	}
	if res.ModifiedCount == 1 {
		return nil
	}
	if _, err := s.GetRound(ctx, wallet, roundID); err != nil {
		return err
	}
	return db.ErrRoundCompleted
}

// RecordScore is not a multi-document transaction: standalone deployments do
// not support them. The round guard still admits one writer per round. If the
// score insert fails the round is reopened so the player can resubmit; a
// failed stats upsert after a stored score is returned but not undone.
func (s *Store) RecordScore(ctx context.Context, rec db.ScoreRecord) error {
	if err := s.CompleteRound(ctx, rec.Wallet, rec.RoundID); err != nil {
		return err
	}

	_, err := s.scores.InsertOne(ctx, scoreDoc{
		Wallet:       rec.Wallet,
		RoundID:      rec.RoundID,
		ReactionTime: rec.ReactionTime,
		Score:        rec.Score,
		Verified:     rec.Verified,
		Signature:    rec.Signature,
		CreatedAt:    rec.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		// A score already exists for this round.
		return db.ErrRoundCompleted
	}
	if err != nil {
		if rerr := s.reopenRound(ctx, rec.Wallet, rec.RoundID); rerr != nil {
			return fmt.Errorf("inserting score: %w (reopening round: %v)", err, rerr)
		}
		return fmt.Errorf("inserting score: %w", err)
	}

	_, err = s.users.UpdateOne(ctx,
		bson.M{"wallet": rec.Wallet},
		bson.M{
			"$inc": bson.M{"totalGames": 1},
			"$max": bson.M{"bestScore": rec.Score},
			"$set": bson.M{"lastPlayedAt": rec.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upserting player stats: %w", err)
	}
	return nil
}

// reopenRound undoes CompleteRound. It runs detached from ctx so a cancelled
// request still releases the round.
func (s *Store) reopenRound(ctx context.Context, wallet, roundID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_, err := s.rounds.UpdateOne(ctx,
		bson.M{"wallet": wallet, "roundId": roundID, "status": string(db.RoundCompleted)},
		bson.M{"$set": bson.M{"status": string(db.RoundStarted)}},
	)
	return err
}

func (s *Store) GetPlayerStats(ctx context.Context, wallet string) (*db.PlayerStatsRecord, error) {
	var d userDoc
	err := s.users.FindOne(ctx, bson.M{"wallet": wallet}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting player stats: %w", err)
	}
	return &db.PlayerStatsRecord{
		Wallet:       d.Wallet,
		TotalGames:   d.TotalGames,
		BestScore:    d.BestScore,
		LastPlayedAt: d.LastPlayedAt,
	}, nil
}

func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return int(n), nil
}

func (s *Store) TopBestScores(ctx context.Context, limit int) ([]int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "bestScore", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"bestScore": 1})
	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("getting top best scores: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding top best scores: %w", err)
	}
	scores := make([]int, 0, len(docs))
	for _, d := range docs {
		scores = append(scores, d.BestScore)
	}
	return scores, nil
}

func (s *Store) HasVerifiedReactionAtMost(ctx context.Context, wallet string, maxMs int) (bool, error) {
	n, err := s.scores.CountDocuments(ctx,
		bson.M{"wallet": wallet, "verified": true, "reactionTime": bson.M{"$lte": maxMs}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("checking reaction history: %w", err)
	}
	return n > 0, nil
}

func (s *Store) TopScores(ctx context.Context, limit int) ([]db.ScoreRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	return s.findScores(ctx, bson.M{"verified": true}, opts)
}

func (s *Store) RecentScores(ctx context.Context, wallet string, limit int) ([]db.ScoreRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.findScores(ctx, bson.M{"wallet": wallet}, opts)
}

func (s *Store) findScores(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]db.ScoreRecord, error) {
	cur, err := s.scores.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding scores: %w", err)
	}
	var docs []scoreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding scores: %w", err)
	}
	scores := make([]db.ScoreRecord, 0, len(docs))
	for _, d := range docs {
		scores = append(scores, db.ScoreRecord{
			Wallet:       d.Wallet,
			RoundID:      d.RoundID,
			ReactionTime: d.ReactionTime,
			Score:        d.Score,
			Verified:     d.Verified,
			Signature:    d.Signature,
			CreatedAt:    d.CreatedAt,
		})
	}
	return scores, nil
}

func (s *Store) GlobalStats(ctx context.Context) (*db.GlobalStats, error) {
	players, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	cur, err := s.users.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalGames"}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("summing games: %w", err)
	}
	var sums []struct {
		Total int `bson:"total"`
	}
	if err := cur.All(ctx, &sums); err != nil {
		return nil, fmt.Errorf("decoding game sum: %w", err)
	}

	claims, err := s.claims.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("counting badge claims: %w", err)
	}

	g := &db.GlobalStats{TotalPlayers: int(players), RewardsDistributed: int(claims)}
	if len(sums) > 0 {
		g.TotalGames = sums[0].Total
	}
	return g, nil
}

func (s *Store) RecordBadgeClaim(ctx context.Context, c db.BadgeClaimRecord) error {
	_, err := s.claims.UpdateOne(ctx,
		bson.M{"wallet": c.Wallet, "badgeId": c.BadgeID},
		bson.M{"$setOnInsert": bson.M{"signature": c.Signature, "claimedAt": c.ClaimedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("recording badge claim: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the store's database. Test helper.
func (s *Store) Drop(ctx context.Context) error {
	return s.rounds.Database().Drop(ctx)
}
