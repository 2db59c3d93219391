package cosmos

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"foodflow/pkg/food/pagination"
	"foodflow/pkg/food/query"
	"foodflow/pkg/logger"
)

// Config selects the account, database and container.
type Config struct {
	// ConnectionString takes precedence over Endpoint and Key.
	ConnectionString string
	Endpoint         string
	Key              string
	Database         string
	Container        string
	PartitionKeyPath string
}

// Open connects to the account, creates the database and container when they
// do not exist yet and returns a repository bound to the container.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Repository, error) {
	if cfg.PartitionKeyPath == "" {
		cfg.PartitionKeyPath = PartitionPath
	}
	if cfg.PartitionKeyPath != PartitionPath {
		return nil, fmt.Errorf("partition key path %q: records are partitioned on %s", cfg.PartitionKeyPath, PartitionPath)
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := client.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: cfg.Database}, nil); err != nil && statusOf(wrap(err)) != http.StatusConflict {
		return nil, fmt.Errorf("creating database %s: %w", cfg.Database, err)
	}
	db, err := client.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database client: %w", err)
	}

	props := azcosmos.ContainerProperties{
		ID: cfg.Container,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{cfg.PartitionKeyPath},
		},
	}
	if _, err := db.CreateContainer(ctx, props, nil); err != nil && statusOf(wrap(err)) != http.StatusConflict {
		return nil, fmt.Errorf("creating container %s: %w", cfg.Container, err)
	}
	c, err := db.NewContainer(cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("container client: %w", err)
	}

	if log != nil {
		log.Info(ctx, "cosmos container ready", "database", cfg.Database, "container", cfg.Container, "partition_key_path", cfg.PartitionKeyPath)
	}
	return newRepository(&sdkContainer{c: c}, log), nil
}

func newClient(cfg Config) (*azcosmos.Client, error) {
	if cfg.ConnectionString != "" {
		client, err := azcosmos.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("cosmos client: %w", err)
		}
		return client, nil
	}
	cred, err := azcosmos.NewKeyCredential(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("cosmos credential: %w", err)
	}
	client, err := azcosmos.NewClientWithKey(cfg.Endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("cosmos client: %w", err)
	}
	return client, nil
}

// statusError carries the HTTP status reported by the store.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }

func (e *statusError) Unwrap() error { return e.err }

func wrap(err error) error {
	var re *azcore.ResponseError
	if errors.As(err, &re) {
		return &statusError{status: re.StatusCode, err: err}
	}
	return err
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

func partitionKey(pk string) azcosmos.PartitionKey {
	if pk == "" {
		return azcosmos.NewPartitionKey()
	}
	return azcosmos.NewPartitionKeyString(pk)
}

// sdkContainer adapts *azcosmos.ContainerClient to container.
type sdkContainer struct {
	c *azcosmos.ContainerClient
}

func (s *sdkContainer) read(ctx context.Context, pk, id string) ([]byte, float64, error) {
	resp, err := s.c.ReadItem(ctx, partitionKey(pk), id, nil)
	if err != nil {
		return nil, 0, wrap(err)
	}
	return resp.Value, float64(resp.RequestCharge), nil
}

func (s *sdkContainer) create(ctx context.Context, pk string, doc []byte) (float64, error) {
	resp, err := s.c.CreateItem(ctx, partitionKey(pk), doc, nil)
	if err != nil {
		return 0, wrap(err)
	}
	return float64(resp.RequestCharge), nil
}

func (s *sdkContainer) upsert(ctx context.Context, pk string, doc []byte) (float64, error) {
	resp, err := s.c.UpsertItem(ctx, partitionKey(pk), doc, nil)
	if err != nil {
		return 0, wrap(err)
	}
	return float64(resp.RequestCharge), nil
}

func (s *sdkContainer) patch(ctx context.Context, pk, id string, ops []patchOp) (float64, error) {
	var patch azcosmos.PatchOperations
	for _, op := range ops {
		switch op.op {
		case "set":
			patch.AppendSet(op.path, op.value)
		default:
			return 0, fmt.Errorf("unsupported patch op %q", op.op)
		}
	}
	resp, err := s.c.PatchItem(ctx, partitionKey(pk), id, patch, nil)
	if err != nil {
		return 0, wrap(err)
	}
	return float64(resp.RequestCharge), nil
}

func (s *sdkContainer) remove(ctx context.Context, pk, id string) (float64, error) {
	resp, err := s.c.DeleteItem(ctx, partitionKey(pk), id, nil)
	if err != nil {
		return 0, wrap(err)
	}
	return float64(resp.RequestCharge), nil
}

func (s *sdkContainer) query(q query.Query, pk string, pageSize int, continuation string) pagination.Feed[[]byte] {
	text, params := q.Render()
	opts := &azcosmos.QueryOptions{}
	if pageSize > 0 {
		opts.PageSizeHint = int32(pageSize)
	}
	if continuation != "" {
		opts.ContinuationToken = &continuation
	}
	for _, p := range params {
		opts.QueryParameters = append(opts.QueryParameters, azcosmos.QueryParameter{Name: p.Name, Value: p.Value})
	}
	return &sdkFeed{pager: s.c.NewQueryItemsPager(text, partitionKey(pk), opts)}
}

// sdkFeed adapts the SDK pager to pagination.Feed.
type sdkFeed struct {
	pager *runtime.Pager[azcosmos.QueryItemsResponse]
}

func (f *sdkFeed) More() bool { return f.pager.More() }

func (f *sdkFeed) Next(ctx context.Context) (pagination.Batch[[]byte], error) {
	resp, err := f.pager.NextPage(ctx)
	if err != nil {
		return pagination.Batch[[]byte]{}, wrap(err)
	}
	b := pagination.Batch[[]byte]{Items: resp.Items, Charge: float64(resp.RequestCharge)}
	if resp.ContinuationToken != nil {
		b.Continuation = *resp.ContinuationToken
	}
	return b, nil
}
