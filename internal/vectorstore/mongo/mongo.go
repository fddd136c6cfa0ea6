package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"audio-vectorize/internal/vectorstore"
)

// Field names follow the layout written by langchain's MongoDBAtlasVectorSearch,
// so collections filled by either writer stay readable by the other.
const (
	textField      = "text"
	embeddingField = "embedding"
	fileIDField    = "id"
	indexField     = "chunk_index"
)

var systemDatabases = map[string]bool{"admin": true, "local": true, "config": true}

type document struct {
	Text       string    `bson:"text"`
	Embedding  []float64 `bson:"embedding"`
	FileID     string    `bson:"id"`
	ChunkIndex int       `bson:"chunk_index"`
	Score      float64   `bson:"score,omitempty"`
}

type Config struct {
	URI       string
	IndexName string
	// NumCandidatesFactor multiplies topK for the $vectorSearch candidate pool.
	NumCandidatesFactor int
}

// Store keeps chunks in MongoDB (Atlas for $vectorSearch).
type Store struct {
	client              *mongo.Client
	indexName           string
	numCandidatesFactor int
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb failed: %w", err)
	}

	if cfg.IndexName == "" {
		cfg.IndexName = "hf_embeddings"
	}
	if cfg.NumCandidatesFactor <= 0 {
		cfg.NumCandidatesFactor = 10
	}
	return &Store{client: client, indexName: cfg.IndexName, numCandidatesFactor: cfg.NumCandidatesFactor}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(c vectorstore.Container) *mongo.Collection {
	return s.client.Database(c.Database).Collection(c.Collection)
}

func (s *Store) ListContainers(ctx context.Context) ([]vectorstore.Container, error) {
	dbNames, err := s.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list mongodb databases failed: %w", err)
	}
	var out []vectorstore.Container
	for _, dbName := range dbNames {
		if systemDatabases[dbName] {
			continue
		}
		names, err := s.client.Database(dbName).ListCollectionNames(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("list mongodb collections of %s failed: %w", dbName, err)
		}
		for _, name := range names {
			out = append(out, vectorstore.Container{Database: dbName, Collection: name})
		}
	}
	return out, nil
}

func (s *Store) EnsureCollection(ctx context.Context, c vectorstore.Container) error {
	if !c.Valid() {
		return vectorstore.ErrInvalidContainer
	}
	db := s.client.Database(c.Database)
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: c.Collection}})
	if err != nil {
		return fmt.Errorf("list mongodb collections failed: %w", err)
	}
	if len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, c.Collection); err != nil {
		var cmdErr mongo.CommandError
		// NamespaceExists: lost a race with another creator
		if errors.As(err, &cmdErr) && cmdErr.Code == 48 {
			return nil
		}
		return fmt.Errorf("create mongodb collection failed: %w", err)
	}
	return nil
}

func (s *Store) DropCollection(ctx context.Context, c vectorstore.Container) error {
	if err := s.collection(c).Drop(ctx); err != nil {
		return fmt.Errorf("drop mongodb collection failed: %w", err)
	}
	return nil
}

func (s *Store) GetByFileID(ctx context.Context, c vectorstore.Container, fileID string) ([]vectorstore.Chunk, error) {
	opts := options.Find().SetSort(bson.D{{Key: indexField, Value: 1}})
	cursor, err := s.collection(c).Find(ctx, fileFilter(fileID), opts)
	if err != nil {
		return nil, fmt.Errorf("find mongodb chunks failed: %w", err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode mongodb chunks failed: %w", err)
	}
	chunks := make([]vectorstore.Chunk, len(docs))
	for i, d := range docs {
		chunks[i] = d.toChunk()
	}
	return chunks, nil
}

func (s *Store) Insert(ctx context.Context, c vectorstore.Container, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if _, err := s.collection(c).InsertMany(ctx, newDocuments(chunks)); err != nil {
		return fmt.Errorf("insert mongodb chunks failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteByFileID(ctx context.Context, c vectorstore.Container, fileID string) (int64, error) {
	res, err := s.collection(c).DeleteMany(ctx, fileFilter(fileID))
	if err != nil {
		return 0, fmt.Errorf("delete mongodb chunks failed: %w", err)
	}
	return res.DeletedCount, nil
}

// Search runs an Atlas $vectorSearch against the configured index.
func (s *Store) Search(ctx context.Context, c vectorstore.Container, vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	cursor, err := s.collection(c).Aggregate(ctx, s.searchPipeline(vector, topK))
	if err != nil {
		return nil, fmt.Errorf("mongodb vector search failed: %w", err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode mongodb search results failed: %w", err)
	}
	results := make([]vectorstore.SearchResult, len(docs))
	for i, d := range docs {
		results[i] = vectorstore.SearchResult{Chunk: d.toChunk(), Score: d.Score}
	}
	return results, nil
}

func fileFilter(fileID string) bson.M {
	return bson.M{fileIDField: fileID}
}

func newDocuments(chunks []vectorstore.Chunk) []interface{} {
	docs := make([]interface{}, len(chunks))
	for i, chunk := range chunks {
		docs[i] = document{
			Text:       chunk.Text,
			Embedding:  toFloat64(chunk.Embedding),
			FileID:     chunk.FileID,
			ChunkIndex: chunk.Index,
		}
	}
	return docs
}

// searchPipeline is $vectorSearch over the embedding field followed by a
// projection that keeps the chunk fields and the search score.
func (s *Store) searchPipeline(vector []float32, topK int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.indexName},
			{Key: "path", Value: embeddingField},
			{Key: "queryVector", Value: toFloat64(vector)},
			{Key: "numCandidates", Value: topK * s.numCandidatesFactor},
			{Key: "limit", Value: topK},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: textField, Value: 1},
			{Key: fileIDField, Value: 1},
			{Key: indexField, Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}
}

func (d document) toChunk() vectorstore.Chunk {
	embedding := make([]float32, len(d.Embedding))
	for i, v := range d.Embedding {
		embedding[i] = float32(v)
	}
	return vectorstore.Chunk{FileID: d.FileID, Index: d.ChunkIndex, Text: d.Text, Embedding: embedding}
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
