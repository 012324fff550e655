package elastic_search

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"github.com/sha1sum/aws_signing_client"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoClient = errors.New("elastic search is not configured")
)

type Index interface {
	GetClient() *elastic.Client

	InstallMappings(reset bool) error

	AddIndexRequest(index string, entity entity.Entity, reqAction RequestAction)
	AddUpdateRequest(index string, entity entity.Entity, reqAction RequestAction)

	BatchPersist() bool
	Persist() (int, error)
}

type index struct {
	mu        *sync.Mutex
	client    *elastic.Client
	cache     *cache.Cache
	refresh   string
	bulkCount int
}

type Request struct {
	Index  string
	Entity entity.Entity
	Type   RequestType
	Action RequestAction
}

type RequestType string

const (
	IndexRequest  RequestType = "index"
	UpdateRequest RequestType = "update"
)

type RequestAction string

const (
	ListingCreate  RequestAction = "ListingCreate"
	ListingSale    RequestAction = "ListingSale"
	ListingRetire  RequestAction = "ListingRetire"
	ListingReindex RequestAction = "ListingReindex"
)

const batchPersistSize = 250

func New() (Index, error) {
	client, err := newClient()
	if err != nil {
		if !errors.Is(err, ErrNoClient) {
			zap.L().With(zap.Error(err)).Error("ElasticSearch: Failed to create client")
		}
		return nil, err
	}

	return newIndex(client, config.Get().ElasticSearch.Refresh, config.Get().ElasticSearch.BulkPersistCount), nil
}

func newIndex(client *elastic.Client, refresh string, bulkCount int) index {
	return index{&sync.Mutex{}, client, cache.New(5*time.Minute, 10*time.Minute), refresh, bulkCount}
}

func newClient() (*elastic.Client, error) {
	cfg := config.Get()
	if len(cfg.ElasticSearch.Hosts) == 0 {
		return nil, ErrNoClient
	}

	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(cfg.ElasticSearch.Hosts, ",")),
		elastic.SetSniff(cfg.ElasticSearch.Sniff),
		elastic.SetHealthcheck(cfg.ElasticSearch.HealthCheck),
	}

	if cfg.ElasticSearch.Debug {
		opts = append(opts, elastic.SetTraceLog(ElasticLogger{}))
	}

	if cfg.ElasticSearch.Aws {
		creds := credentials.NewStaticCredentials(cfg.Aws.AccessKey, cfg.Aws.SecretKey, cfg.Aws.Token)
		awsClient, err := aws_signing_client.New(v4.NewSigner(creds), nil, "es", cfg.Aws.Region)
		if err != nil {
			return nil, err
		}

		opts = append(opts, elastic.SetHttpClient(awsClient))
		opts = append(opts, elastic.SetScheme("https"))
		return elastic.NewClient(opts...)
	}

	if cfg.ElasticSearch.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(
			cfg.ElasticSearch.Username,
			cfg.ElasticSearch.Password,
		))
	}

	return elastic.NewClient(opts...)
}

func (i index) GetClient() *elastic.Client {
	return i.client
}

// InstallMappings creates an index for every mapping file in the mapping directory. Existing
// indices are dropped first when reset is set.
func (i index) InstallMappings(reset bool) error {
	zap.L().Info("ElasticSearch: Install Mappings")

	mappingDir := config.Get().ElasticSearch.MappingDir
	files, err := os.ReadDir(mappingDir)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("ElasticSearch: Elastic mappings directory error")
		return err
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}

		b, err := os.ReadFile(filepath.Join(mappingDir, f.Name()))
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("file", f.Name())).Error("ElasticSearch: Elastic mappings file error")
			return err
		}

		name := Indices(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		if err = i.createIndex(name.Get(), b, reset); err != nil {
			zap.L().With(zap.Error(err), zap.String("index", name.Get())).Error("ElasticSearch: Failed to create index")
			return err
		}
	}

	return nil
}

func (i index) createIndex(index string, mapping []byte, reset bool) error {
	ctx := context.Background()
	client := i.client

	exists, err := client.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}

	if exists && reset {
		zap.S().Infof("ElasticSearch: Deleting index %s", index)
		_, err = client.DeleteIndex(index).Do(ctx)
		if err != nil {
			return err
		}
		exists = false
	}

	if !exists {
		createIndex, err := client.CreateIndex(index).BodyString(string(mapping)).Do(ctx)
		if err != nil {
			return err
		}

		if createIndex.Acknowledged {
			zap.S().Infof("ElasticSearch: Created index %s", index)
		}
	}

	return nil
}

func (i index) AddIndexRequest(index string, entity entity.Entity, reqAction RequestAction) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
		zap.String("action", string(reqAction)),
	).Debug("ElasticSearch: AddIndexRequest")

	i.mu.Lock()
	defer i.mu.Unlock()

	if cached, found := i.cache.Get(entity.Slug()); found {
		entity = mergeRequests(index, cached.(Request), reqAction, entity)
	}

	i.addRequest(index, entity, IndexRequest, reqAction)
}

func (i index) AddUpdateRequest(index string, entity entity.Entity, reqAction RequestAction) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
		zap.String("action", string(reqAction)),
	).Debug("ElasticSearch: AddUpdateRequest")

	i.mu.Lock()
	defer i.mu.Unlock()

	if cached, found := i.cache.Get(entity.Slug()); found {
		entity = mergeRequests(index, cached.(Request), reqAction, entity)
		if cached.(Request).Type == IndexRequest {
			i.addRequest(index, entity, IndexRequest, reqAction)
			return
		}
	}

	i.addRequest(index, entity, UpdateRequest, reqAction)
}

func (i index) addRequest(index string, entity entity.Entity, reqType RequestType, reqAction RequestAction) {
	i.cache.Set(entity.Slug(), Request{index, entity, reqType, reqAction}, cache.NoExpiration)
}

func (i index) getRequests() []Request {
	requests := make([]Request, 0)

	for _, item := range i.cache.Items() {
		requests = append(requests, item.Object.(Request))
	}

	return requests
}

func (i index) BatchPersist() bool {
	if i.cache.ItemCount() < batchPersistSize {
		return false
	}

	start := time.Now()
	actions, err := i.Persist()
	if err != nil {
		return false
	}

	zap.L().With(
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("actions", actions),
	).Info("ElasticSearch: Persisting data")

	return true
}

// Persist writes every buffered request in bulk. Requests stay buffered when the cluster
// rejects them so the next call can retry.
func (i index) Persist() (int, error) {
	if i.client == nil {
		return 0, ErrNoClient
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	requests := i.getRequests()
	total := 0
	bulk := i.client.Bulk()
	for _, r := range requests {
		if r.Type == IndexRequest {
			bulk.Add(elastic.NewBulkIndexRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity))
		} else if r.Type == UpdateRequest {
			bulk.Add(elastic.NewBulkUpdateRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity).DocAsUpsert(true))
		}

		if bulk.NumberOfActions() >= i.bulkCount {
			total += bulk.NumberOfActions()
			if err := i.persist(bulk, 1); err != nil {
				return total, err
			}
			bulk = i.client.Bulk()
		}
	}

	if bulk.NumberOfActions() != 0 {
		total += bulk.NumberOfActions()
		if err := i.persist(bulk, 1); err != nil {
			return total, err
		}
	}

	return total, nil
}

const persistAttempts int = 3

func (i index) persist(bulk *elastic.BulkService, attempt int) error {
	actions := bulk.NumberOfActions()
	zap.S().Debugf("ElasticSearch: Persisting %d actions", actions)

	response, err := bulk.Refresh(i.refresh).Do(context.Background())
	if err != nil {
		if attempt >= persistAttempts {
			zap.L().With(zap.Error(err), zap.Int("actions", actions)).Error("ElasticSearch: Failed to persist requests")
			return err
		}

		delay := 1 * time.Second
		if err.Error() == "elastic: Error 429 (Too Many Requests)" {
			zap.L().With(zap.Error(err)).Warn("ElasticSearch: 429 (Too Many Requests)")
			delay = 5 * time.Second
		}
		time.Sleep(delay)

		return i.persist(bulk, attempt+1)
	}

	for _, succeeded := range response.Succeeded() {
		i.cache.Delete(succeeded.Id)
	}

	if failed := response.Failed(); len(failed) != 0 {
		for _, f := range failed {
			zap.L().With(
				zap.Any("error", f.Error),
				zap.String("index", f.Index),
				zap.String("id", f.Id),
			).Error("ElasticSearch: Failed to persist request")
		}
		return fmt.Errorf("elastic search rejected %d of %d requests", len(failed), actions)
	}

	return nil
}
