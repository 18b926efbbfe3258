package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tasc/internal/domain"
	"tasc/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ ports.TaskStore = (*Client)(nil)

const (
	fieldID        = "id"
	fieldName      = "name"
	fieldCommand   = "command"
	fieldStatus    = "status"
	fieldStatusLog = "status_log"
	envPrefix      = "env:"
)

// Save writes the task hash and, for named tasks, claims the name key that
// maps the name to the task id.
func (c *Client) Save(ctx context.Context, t domain.Task) error {
	key := c.taskKey(t.ID)

	err := c.Rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrTaskExists
		}

		if t.Name != "" {
			ok, err := tx.SetNX(ctx, c.nameKey(t.Name), t.ID, 0).Result()
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrTaskExists
			}
		}

		m := map[string]any{
			fieldID:      t.ID,
			fieldCommand: t.Command,
			fieldStatus:  string(domain.StateScheduled),
		}
		if t.Name != "" {
			m[fieldName] = t.Name
		}
		for k, v := range t.Env {
			m[envPrefix+k] = v
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, m)
			return nil
		})
		if err != nil && t.Name != "" {
			c.releaseName(ctx, t)
		}
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("saving task %s (name %q): %w", t.ID, t.Name, err)
	}
	return nil
}

// releaseName drops the name key claimed by a save that did not go through.
func (c *Client) releaseName(ctx context.Context, t domain.Task) {
	if err := c.Rdb.Del(context.WithoutCancel(ctx), c.nameKey(t.Name)).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("task", t.ID).Str("name", t.Name).Msg("releasing task name failed")
	}
}

func (c *Client) Status(ctx context.Context, id domain.TaskID) (domain.TaskStatus, error) {
	key, err := c.resolve(ctx, id)
	if err != nil {
		return domain.TaskStatus{}, fmt.Errorf("loading %s: %w", id, err)
	}
	h, err := c.Rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.TaskStatus{}, fmt.Errorf("loading %s: %w", id, err)
	}
	if len(h) == 0 {
		return domain.TaskStatus{}, fmt.Errorf("loading %s: %w", id, domain.ErrTaskNotFound)
	}
	status, err := parseStatus(h)
	if err != nil {
		return domain.TaskStatus{}, fmt.Errorf("loading %s: %w", id, err)
	}
	return status, nil
}

func (c *Client) Complete(ctx context.Context, t domain.Task, status domain.TaskStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("completing task %s with %s: %w", t.ID, status.State, domain.ErrInvalidStatus)
	}

	key, err := c.resolve(ctx, t.Identifier())
	if err != nil {
		return fmt.Errorf("completing task %s: %w", t.ID, err)
	}

	err = c.Rdb.Watch(ctx, func(tx *redis.Tx) error {
		h, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(h) == 0 {
			return domain.ErrTaskNotFound
		}
		current, err := parseStatus(h)
		if err != nil {
			return err
		}
		if current.Terminal() {
			return domain.ErrTaskCompleted
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldStatus, string(status.State), fieldStatusLog, status.Log)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("completing task %s: %w", t.ID, err)
	}
	return nil
}

// Task loads the full task record, environment included. The scheduler only
// needs statuses; this is used to check what a saved task reads back as.
func (c *Client) Task(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	key, err := c.resolve(ctx, id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("loading %s: %w", id, err)
	}
	h, err := c.Rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Task{}, fmt.Errorf("loading %s: %w", id, err)
	}
	if len(h) == 0 {
		return domain.Task{}, fmt.Errorf("loading %s: %w", id, domain.ErrTaskNotFound)
	}

	t := domain.Task{
		ID:      h[fieldID],
		Name:    h[fieldName],
		Command: h[fieldCommand],
	}
	for k, v := range h {
		if name, ok := strings.CutPrefix(k, envPrefix); ok {
			if t.Env == nil {
				t.Env = map[string]string{}
			}
			t.Env[name] = v
		}
	}
	return t, nil
}

func (c *Client) resolve(ctx context.Context, id domain.TaskID) (string, error) {
	switch id.Kind {
	case domain.KindID:
		return c.taskKey(id.Value), nil
	case domain.KindName:
		taskID, err := c.Rdb.Get(ctx, c.nameKey(id.Value)).Result()
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrTaskNotFound
		}
		if err != nil {
			return "", err
		}
		return c.taskKey(taskID), nil
	}
	return "", fmt.Errorf("unknown identifier kind %q", id.Kind)
}

func parseStatus(h map[string]string) (domain.TaskStatus, error) {
	var log *string
	if v, ok := h[fieldStatusLog]; ok {
		log = &v
	}
	return domain.ParseStatus(h[fieldStatus], log)
}
