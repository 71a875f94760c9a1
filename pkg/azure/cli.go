package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/azurescope/explorer/pkg/logger"
	"github.com/mkmik/multierror"
	"github.com/pkg/errors"
)

// Typed failures callers branch on before rendering anything.
var (
	ErrCLINotFound = errors.New("azure cli not found in PATH")
	ErrNotLoggedIn = errors.New("azure cli is not logged in")
)

const defaultTimeoutSeconds = 60

// CLI shells out to the az binary. All listing operations request JSON
// output and decode it into the typed model.
type CLI struct {
	azPath string
}

// Request is one raw az invocation, used by the command endpoint.
type Request struct {
	Command []string `json:"command"`
	Timeout int      `json:"timeout,omitempty"` // seconds
}

// Result is the outcome of one az invocation.
type Result struct {
	Success    bool   `json:"success"`
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	Command    string `json:"command"`
	ExecTimeMs int64  `json:"execTimeMs"`
}

// NewCLI returns an executor for the az binary at azPath. An empty path
// falls back to "az" resolved through PATH.
func NewCLI(azPath string) *CLI {
	if azPath == "" {
		azPath = "az"
	}

	return &CLI{azPath: azPath}
}

// Execute runs one raw az command for the terminal/command endpoint.
// The first element of Command must be "az"; the configured binary path
// is substituted for it.
func (c *CLI) Execute(req Request) (*Result, error) {
	if len(req.Command) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}

	if req.Command[0] != "az" {
		return nil, fmt.Errorf("command must start with 'az'")
	}

	timeout := defaultTimeoutSeconds
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	cmdStr := strings.Join(req.Command, " ")
	logger.Log(logger.LevelInfo, map[string]string{"command": cmdStr}, nil, "executing az command")

	cmd := exec.CommandContext(ctx, c.azPath, req.Command[1:]...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	err := cmd.Run()
	execTime := time.Since(startTime).Milliseconds()

	result := &Result{
		Success:    err == nil,
		Output:     stdout.String(),
		Command:    cmdStr,
		ExecTimeMs: execTime,
	}

	if err != nil {
		result.Error = strings.TrimSpace(stderr.String())
		if result.Error == "" {
			result.Error = err.Error()
		}

		logger.Log(logger.LevelError, map[string]string{"command": cmdStr}, err, "az command failed")
	}

	return result, nil
}

// run executes az with the given args and returns stdout, mapping the two
// failure classes every caller cares about onto sentinels.
func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.azPath, args...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if execErr, ok := err.(*exec.Error); ok && execErr.Err == exec.ErrNotFound {
			return nil, ErrCLINotFound
		}

		msg := stderr.String()
		if strings.Contains(msg, "az login") || strings.Contains(msg, "Please run 'az login'") {
			return nil, ErrNotLoggedIn
		}

		return nil, errors.Wrapf(err, "az %s: %s", strings.Join(args, " "), strings.TrimSpace(msg))
	}

	return stdout.Bytes(), nil
}

// CheckAccess verifies the binary exists and a login session is active.
func (c *CLI) CheckAccess(ctx context.Context) error {
	if _, err := exec.LookPath(c.azPath); err != nil {
		return ErrCLINotFound
	}

	_, err := c.run(ctx, "account", "show", "--output", "json")

	return err
}

// CurrentSubscription returns the subscription az is pointed at.
func (c *CLI) CurrentSubscription(ctx context.Context) (*Subscription, error) {
	out, err := c.run(ctx, "account", "show", "--output", "json")
	if err != nil {
		return nil, err
	}

	var sub Subscription
	if err := json.Unmarshal(out, &sub); err != nil {
		return nil, errors.Wrap(err, "decoding account show output")
	}

	return &sub, nil
}

// ListSubscriptions returns every subscription visible to the session.
func (c *CLI) ListSubscriptions(ctx context.Context) ([]*Subscription, error) {
	out, err := c.run(ctx, "account", "list", "--output", "json")
	if err != nil {
		return nil, err
	}

	var subs []*Subscription
	if err := json.Unmarshal(out, &subs); err != nil {
		return nil, errors.Wrap(err, "decoding account list output")
	}

	return subs, nil
}

// ListResourceGroups returns all resource groups in a subscription.
// An empty subscriptionID uses the session default.
func (c *CLI) ListResourceGroups(ctx context.Context, subscriptionID string) ([]ResourceGroup, error) {
	args := []string{"group", "list", "--output", "json"}
	if subscriptionID != "" {
		args = append(args, "--subscription", subscriptionID)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var groups []ResourceGroup
	if err := json.Unmarshal(out, &groups); err != nil {
		return nil, errors.Wrap(err, "decoding group list output")
	}

	return groups, nil
}

// ListResources returns every resource in a subscription, including the
// per-resource properties document.
func (c *CLI) ListResources(ctx context.Context, subscriptionID string) ([]Resource, error) {
	args := []string{"resource", "list", "--expand-properties", "--output", "json"}
	if subscriptionID != "" {
		args = append(args, "--subscription", subscriptionID)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var resources []Resource
	if err := json.Unmarshal(out, &resources); err != nil {
		return nil, errors.Wrap(err, "decoding resource list output")
	}

	return resources, nil
}

// ShowNetworkSecurityGroup fetches one NSG with its full rule set, for
// resources whose inline properties came back truncated.
func (c *CLI) ShowNetworkSecurityGroup(ctx context.Context, resourceGroup, name string) (*Resource, error) {
	out, err := c.run(ctx, "network", "nsg", "show",
		"--resource-group", resourceGroup, "--name", name, "--output", "json")
	if err != nil {
		return nil, err
	}

	var nsg Resource
	if err := json.Unmarshal(out, &nsg); err != nil {
		return nil, errors.Wrap(err, "decoding nsg show output")
	}

	return &nsg, nil
}

// Discovery is the combined result of one subscription scan.
type Discovery struct {
	Subscription   *Subscription
	ResourceGroups []ResourceGroup
	Resources      []Resource
}

// Discover runs a full scan of one subscription. Group and resource
// listing failures are collected rather than aborting the scan; the
// joined error is returned alongside whatever was discovered.
func (c *CLI) Discover(ctx context.Context, subscriptionID string) (*Discovery, error) {
	var errs []error

	sub, err := c.CurrentSubscription(ctx)
	if err != nil {
		// Credential problems are fatal; nothing else will succeed.
		if errors.Is(err, ErrCLINotFound) || errors.Is(err, ErrNotLoggedIn) {
			return nil, err
		}

		errs = append(errs, err)
	}

	groups, err := c.ListResourceGroups(ctx, subscriptionID)
	if err != nil {
		errs = append(errs, err)
	}

	resources, err := c.ListResources(ctx, subscriptionID)
	if err != nil {
		errs = append(errs, err)
	}

	d := &Discovery{
		Subscription:   sub,
		ResourceGroups: groups,
		Resources:      resources,
	}

	if len(errs) > 0 {
		return d, multierror.Join(errs)
	}

	return d, nil
}
