package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub notification topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// topicAdmin is the slice of the topic admin API used at bootstrap.
type topicAdmin interface {
	GetTopic(ctx context.Context, name string) error
	CreateTopic(ctx context.Context, name string) error
}

type gcpTopicAdmin struct {
	client *pubsub.Client
}

func (a gcpTopicAdmin) GetTopic(ctx context.Context, name string) error {
	_, err := a.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	return err
}

func (a gcpTopicAdmin) CreateTopic(ctx context.Context, name string) error {
	_, err := a.client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: name})
	return err
}

// Client owns the Pub/Sub connection for the notification topic.
type Client struct {
	client *pubsub.Client
	admin  topicAdmin
	topic  string
	cfg    config.PubSubConfig
}

// NewClient connects to Pub/Sub and makes sure the notification topic is
// there, creating it when HOSTELHUB_PUBSUB_CREATE_TOPIC is set.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	topic := topicResourceName(projectID, cfg.NotificationTopic)
	if topic == "" {
		return nil, errNoTopic
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	psClient, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, admin: gcpTopicAdmin{client: psClient}, topic: topic, cfg: cfg}
	created, err := c.ensureTopic(ctx)
	if err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{"topic": topic, "created": created})
		logg.Info(logCtx, "pubsub client initialized")
	}
	return c, nil
}

// ensureTopic reports whether it had to create the topic.
func (c *Client) ensureTopic(ctx context.Context) (bool, error) {
	err := c.admin.GetTopic(ctx, c.topic)
	switch {
	case err == nil:
		return false, nil
	case status.Code(err) != codes.NotFound:
		return false, fmt.Errorf("checking topic %s: %w", c.topic, err)
	case !c.cfg.CreateTopic:
		return false, fmt.Errorf("topic %s does not exist", c.topic)
	}

	err = c.admin.CreateTopic(ctx, c.topic)
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return false, fmt.Errorf("creating topic %s: %w", c.topic, err)
	}
	return err == nil, nil
}

// NotificationPublisher returns the publisher for the notification topic.
// Ordering keys are honoured when HOSTELHUB_PUBSUB_ORDER_BY_STUDENT is set.
func (c *Client) NotificationPublisher() *TopicPublisher {
	if c == nil || c.client == nil {
		return nil
	}
	pub := c.client.Publisher(c.topic)
	pub.EnableMessageOrdering = c.cfg.OrderByStudent
	return &TopicPublisher{publisher: pub, ordered: c.cfg.OrderByStudent}
}

// Ping checks the notification topic is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.admin == nil {
		return errNotInitialized
	}
	return c.admin.GetTopic(ctx, c.topic)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func topicResourceName(projectID, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return "projects/" + p + "/topics/" + n
}

// Message is what callers hand to a publisher. OrderingKey is dropped when
// the publisher is unordered.
type Message struct {
	Data        []byte
	Attributes  map[string]string
	OrderingKey string
}

// TopicPublisher publishes a message and waits for the server ack.
type TopicPublisher struct {
	publisher *pubsub.Publisher
	ordered   bool
}

// Publish returns the server-assigned message id.
func (p *TopicPublisher) Publish(ctx context.Context, msg Message) (string, error) {
	if p == nil || p.publisher == nil {
		return "", errNotInitialized
	}
	out := &pubsub.Message{Data: msg.Data, Attributes: msg.Attributes}
	if p.ordered {
		out.OrderingKey = msg.OrderingKey
	}
	id, err := p.publisher.Publish(ctx, out).Get(ctx)
	if err != nil {
		// a failed ordered publish pauses its key until resumed
		if out.OrderingKey != "" {
			p.publisher.ResumePublish(out.OrderingKey)
		}
		return "", fmt.Errorf("publish: %w", err)
	}
	return id, nil
}

// Stop flushes pending messages.
func (p *TopicPublisher) Stop() {
	if p == nil || p.publisher == nil {
		return
	}
	p.publisher.Stop()
}
