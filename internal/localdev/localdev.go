// Where: internal/localdev/localdev.go
// What: Local DynamoDB stack managed through the Docker SDK.
// Why: Table work should not need AWS credentials or a network round trip.
package localdev

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/triadops/deploykit/internal/constants"
	"github.com/triadops/deploykit/internal/envutil"
)

const (
	roleLabel      = "com.deploykit.role"
	managedByLabel = "com.deploykit.managed-by"

	RoleDynamo = "dynamodb"
	RoleAdmin  = "dynamodb-admin"

	dynamoImage = "amazon/dynamodb-local:latest"
	adminImage  = "aaronshaf/dynamodb-admin:latest"

	dynamoContainerName = "deploykit-dynamodb"
	adminContainerName  = "deploykit-dynamodb-admin"

	DefaultDynamoPort = 8000
	DefaultAdminPort  = 8001
)

// DockerClient defines the subset of Docker SDK methods used by this package.
// This interface enables mocking the Docker client in tests.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
}

// NewDockerClient constructs a Docker SDK client using environment defaults.
func NewDockerClient() (DockerClient, error) {
	return dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())
}

// ResolvePorts returns the host ports for the stack, honoring the
// DEPLOYKIT_PORT_DYNAMODB and DEPLOYKIT_PORT_DYNAMODB_ADMIN overrides.
func ResolvePorts() (dynamoPort, adminPort int) {
	return resolvePort(constants.SuffixPortDynamoDB, DefaultDynamoPort),
		resolvePort(constants.SuffixPortDynamoAdmin, DefaultAdminPort)
}

func resolvePort(suffix string, defaultPort int) int {
	raw := strings.TrimSpace(envutil.Get(suffix))
	if raw == "" {
		return defaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 {
		return defaultPort
	}
	return port
}

// Stack manages the local DynamoDB container pair.
type Stack struct {
	DynamoPort int
	AdminPort  int

	client DockerClient
	log    log.Interface
}

// NewStack builds a Stack. Zero ports fall back to the defaults.
func NewStack(client DockerClient, dynamoPort, adminPort int, logger log.Interface) *Stack {
	if dynamoPort <= 0 {
		dynamoPort = DefaultDynamoPort
	}
	if adminPort <= 0 {
		adminPort = DefaultAdminPort
	}
	if logger == nil {
		logger = log.Log
	}
	return &Stack{DynamoPort: dynamoPort, AdminPort: adminPort, client: client, log: logger}
}

// DynamoEndpoint returns the endpoint table commands should target.
func (s *Stack) DynamoEndpoint() string {
	return fmt.Sprintf("http://localhost:%d", s.DynamoPort)
}

// AdminURL returns the admin UI address.
func (s *Stack) AdminURL() string {
	return fmt.Sprintf("http://localhost:%d", s.AdminPort)
}

type service struct {
	name          string
	role          string
	image         string
	cmd           []string
	env           []string
	containerPort int
	hostPort      int
	extraHosts    []string
}

func (s *Stack) services() []service {
	return []service{
		{
			name:          dynamoContainerName,
			role:          RoleDynamo,
			image:         dynamoImage,
			cmd:           []string{"-jar", "DynamoDBLocal.jar", "-sharedDb", "-inMemory"},
			containerPort: 8000,
			hostPort:      s.DynamoPort,
		},
		{
			name:          adminContainerName,
			role:          RoleAdmin,
			image:         adminImage,
			env:           []string{fmt.Sprintf("DYNAMO_ENDPOINT=http://host.docker.internal:%d", s.DynamoPort)},
			containerPort: 8001,
			hostPort:      s.AdminPort,
			extraHosts:    []string{"host.docker.internal:host-gateway"},
		},
	}
}

// Up starts the stack. Existing containers are reused: running ones are
// left alone, stopped ones restarted.
func (s *Stack) Up(ctx context.Context) error {
	existing, err := s.listManaged(ctx)
	if err != nil {
		return err
	}
	byRole := map[string]container.Summary{}
	for _, ctr := range existing {
		byRole[ctr.Labels[roleLabel]] = ctr
	}

	for _, svc := range s.services() {
		ctr, found := byRole[svc.role]
		if found {
			if ctr.State == "running" {
				s.log.WithField("container", svc.name).Debug("already running")
				continue
			}
			if err := s.client.ContainerStart(ctx, ctr.ID, container.StartOptions{}); err != nil {
				return fmt.Errorf("start %s: %w", svc.name, err)
			}
			s.log.WithField("container", svc.name).Info("restarted container")
			continue
		}
		if err := s.createAndStart(ctx, svc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stack) createAndStart(ctx context.Context, svc service) error {
	id, err := s.createContainer(ctx, svc)
	if errdefs.IsNotFound(err) {
		if err := s.pullImage(ctx, svc.image); err != nil {
			return fmt.Errorf("pull %s: %w", svc.image, err)
		}
		id, err = s.createContainer(ctx, svc)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", svc.name, err)
	}

	if err := s.client.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("start %s: %w", svc.name, err)
	}
	s.log.WithField("container", svc.name).WithField("port", svc.hostPort).Info("started container")
	return nil
}

func (s *Stack) createContainer(ctx context.Context, svc service) (string, error) {
	port, err := nat.NewPort("tcp", strconv.Itoa(svc.containerPort))
	if err != nil {
		return "", err
	}

	config := &container.Config{
		Image: svc.image,
		Cmd:   svc.cmd,
		Env:   svc.env,
		Labels: map[string]string{
			roleLabel:      svc.role,
			managedByLabel: "deploykit",
		},
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(svc.hostPort)}},
		},
		ExtraHosts: svc.extraHosts,
	}

	resp, err := s.client.ContainerCreate(ctx, config, hostConfig, nil, nil, svc.name)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (s *Stack) pullImage(ctx context.Context, ref string) error {
	reader, err := s.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return err
	}
	defer reader.Close()
	// The pull completes only once the progress stream is drained.
	_, err = io.Copy(io.Discard, reader)
	return err
}

// Down stops and removes the stack's containers.
func (s *Stack) Down(ctx context.Context, removeVolumes bool) error {
	existing, err := s.listManaged(ctx)
	if err != nil {
		return err
	}

	for _, ctr := range existing {
		if ctr.State == "running" {
			if err := s.client.ContainerStop(ctx, ctr.ID, container.StopOptions{}); err != nil {
				return err
			}
		}
		if err := s.client.ContainerRemove(ctx, ctr.ID, container.RemoveOptions{RemoveVolumes: removeVolumes}); err != nil {
			return err
		}
		s.log.WithField("container", containerName(ctr)).Info("removed container")
	}
	return nil
}

// ServiceStatus describes one managed container.
type ServiceStatus struct {
	Name  string
	Role  string
	State string
	Ports []string
}

// Status returns the state of the stack's containers.
func (s *Stack) Status(ctx context.Context) ([]ServiceStatus, error) {
	existing, err := s.listManaged(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]ServiceStatus, 0, len(existing))
	for _, ctr := range existing {
		status := ServiceStatus{
			Name:  containerName(ctr),
			Role:  ctr.Labels[roleLabel],
			State: ctr.State,
		}
		for _, port := range ctr.Ports {
			if port.PublicPort == 0 {
				continue
			}
			status.Ports = append(status.Ports, fmt.Sprintf("%d->%d/%s", port.PublicPort, port.PrivatePort, port.Type))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *Stack) listManaged(ctx context.Context) ([]container.Summary, error) {
	labelFilter := filters.NewArgs()
	labelFilter.Add("label", fmt.Sprintf("%s=%s", managedByLabel, "deploykit"))

	return s.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: labelFilter,
	})
}

func containerName(ctr container.Summary) string {
	if len(ctr.Names) > 0 {
		return strings.TrimPrefix(ctr.Names[0], "/")
	}
	return ctr.ID
}

// TablesProber is the single DynamoDB call used to probe readiness.
type TablesProber interface {
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// WaitReady polls ListTables against the local endpoint until DynamoDB
// answers or the timeout elapses. The port accepting connections is not
// enough; DynamoDB Local returns errors while the JVM is still starting.
func (s *Stack) WaitReady(ctx context.Context, client TablesProber, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		_, err := client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("dynamodb not ready on %s after %s: %w", s.DynamoEndpoint(), timeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}
