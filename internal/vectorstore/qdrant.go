package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/smarslabs/assistd/internal/config"
)

// maxMessageSize bounds gRPC messages; embedding batches stay small but the
// default 4MB ceiling is tight for large upserts.
const maxMessageSize = 16 * 1024 * 1024

// QdrantStore is a Store implementation backed by Qdrant's native gRPC
// client (port 6334). Binary protobuf transport avoids the HTTP payload
// limits of the REST layer.
type QdrantStore struct {
	client *qdrant.Client
	config config.QdrantConfig
}

// NewQdrantStore connects to Qdrant and verifies the connection with a
// health check.
func NewQdrantStore(cfg config.QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, cfg.Port)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(maxMessageSize),
				grpc.MaxCallSendMsgSize(maxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &QdrantStore{client: client, config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}

	return s, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance if it does
// not already exist. Idempotent.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		// Lost the create race; the collection exists either way.
		if st, ok := status.FromError(err); ok && st.Code() == grpccodes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}
	return nil
}

// Search runs an ANN query scoped to the user's points.
func (s *QdrantStore) Search(ctx context.Context, collection, userID string, vector []float32, params SearchParams) ([]ScoredPoint, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if params.Limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", params.Limit)
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(params.Limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         userFilter(userID),
	}
	if params.CandidatePool > 0 {
		query.Params = &qdrant.SearchParams{
			HnswEf: qdrant.PtrOf(uint64(params.CandidatePool)),
		}
	}

	hits, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", collection, err)
	}

	results := make([]ScoredPoint, 0, len(hits))
	for _, hit := range hits {
		results = append(results, fromScoredPoint(hit))
	}
	return results, nil
}

// Upsert writes points with the user id and record id folded into the
// payload for filtering and deletion.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		if p.UserID == "" {
			return ErrMissingUser
		}

		payload := make(map[string]*qdrant.Value, len(p.Payload)+2)
		payload["record_id"] = stringValue(p.ID)
		payload["user_id"] = stringValue(p.UserID)
		for k, v := range p.Payload {
			payload[k] = toQdrantValue(v)
		}

		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      pointID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points to %s: %w", len(points), collection, err)
	}
	return nil
}

// DeletePoints removes points whose record_id payload matches any given id.
func (s *QdrantStore) DeletePoints(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						{
							ConditionOneOf: &qdrant.Condition_Field{
								Field: &qdrant.FieldCondition{
									Key: "record_id",
									Match: &qdrant.Match{
										MatchValue: &qdrant.Match_Keywords{
											Keywords: &qdrant.RepeatedStrings{Strings: ids},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points from %s: %w", collection, err)
	}
	return nil
}

// pointID derives a stable Qdrant point id from the record id. Record ids
// that already are UUIDs are used directly; anything else maps through a
// deterministic UUIDv5 so re-upserting a record replaces its point.
func pointID(recordID string) *qdrant.PointId {
	if _, err := uuid.Parse(recordID); err == nil {
		return qdrant.NewIDUUID(recordID)
	}
	derived := uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID))
	return qdrant.NewIDUUID(derived.String())
}

// userFilter builds the mandatory owner-scoping payload filter.
func userFilter(userID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "user_id",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keyword{Keyword: userID},
						},
					},
				},
			},
		},
	}
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func toQdrantValue(v any) *qdrant.Value {
	switch val := v.(type) {
	case string:
		return stringValue(val)
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
	default:
		return stringValue(fmt.Sprintf("%v", val))
	}
}

func fromScoredPoint(hit *qdrant.ScoredPoint) ScoredPoint {
	result := ScoredPoint{Score: hit.Score}
	if hit.Payload == nil {
		return result
	}

	result.Payload = make(map[string]any, len(hit.Payload))
	for k, v := range hit.Payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			result.Payload[k] = val.StringValue
			switch k {
			case "record_id":
				result.ID = val.StringValue
			case "user_id":
				result.UserID = val.StringValue
			}
		case *qdrant.Value_BoolValue:
			result.Payload[k] = val.BoolValue
		case *qdrant.Value_IntegerValue:
			result.Payload[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			result.Payload[k] = val.DoubleValue
		}
	}
	return result
}

var _ Store = (*QdrantStore)(nil)
