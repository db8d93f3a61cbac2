package service

import (
	"context"
	"fmt"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/pagination"
	"crm-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskFilter narrows a task listing. Empty fields mean no filter.
type TaskFilter struct {
	Status     string
	Priority   string
	AssignedTo string
	LeadID     string
	PipelineID string
	TaskTypeID string
}

// TaskInput is the payload of a task creation
type TaskInput struct {
	Title          string   `json:"title" validate:"required,min=1,max=300"`
	Description    *string  `json:"description"`
	AssignedTo     *string  `json:"assigned_to"`
	CreatedBy      string   `json:"created_by" validate:"required"`
	LeadID         *string  `json:"lead_id"`
	PipelineID     *string  `json:"pipeline_id"`
	TaskTypeID     *string  `json:"task_type_id"`
	Status         *string  `json:"status"`
	Priority       *string  `json:"priority"`
	DueDate        *string  `json:"due_date"`
	DueTime        *string  `json:"due_time"`
	Tags           []string `json:"tags"`
	EstimatedHours *float64 `json:"estimated_hours" validate:"omitnil,gte=0"`
}

// TaskUpdate is a partial task update; nil fields are left untouched
type TaskUpdate struct {
	Title          *string   `json:"title" validate:"omitnil,min=1,max=300"`
	Description    *string   `json:"description"`
	AssignedTo     *string   `json:"assigned_to"`
	LeadID         *string   `json:"lead_id"`
	PipelineID     *string   `json:"pipeline_id"`
	TaskTypeID     *string   `json:"task_type_id"`
	Status         *string   `json:"status"`
	Priority       *string   `json:"priority"`
	DueDate        *string   `json:"due_date"`
	DueTime        *string   `json:"due_time"`
	Tags           *[]string `json:"tags"`
	EstimatedHours *float64  `json:"estimated_hours" validate:"omitnil,gte=0"`
	ActualHours    *float64  `json:"actual_hours" validate:"omitnil,gte=0"`
}

// CommentInput is a new task comment
type CommentInput struct {
	UserID  string `json:"user_id" validate:"required"`
	Comment string `json:"comment" validate:"required,min=1"`
}

// TaskService manages tasks, their comments and task types
type TaskService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTaskService(db *gorm.DB, log *zap.Logger) *TaskService {
	return &TaskService{db: db, log: log}
}

func taskFilters(f TaskFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Priority != "" {
			db = db.Where("priority = ?", f.Priority)
		}
		if f.AssignedTo != "" {
			db = db.Where("assigned_to = ?", f.AssignedTo)
		}
		if f.LeadID != "" {
			db = db.Where("lead_id = ?", f.LeadID)
		}
		if f.PipelineID != "" {
			db = db.Where("pipeline_id = ?", f.PipelineID)
		}
		if f.TaskTypeID != "" {
			db = db.Where("task_type_id = ?", f.TaskTypeID)
		}
		return db
	}
}

// List returns one page of tasks by due date, undated tasks last
func (s *TaskService) List(ctx context.Context, tenantID string, f TaskFilter, p pagination.Params) (*pagination.Page[model.Task], error) {
	defer prometheus.TrackDBOperation("task_list")()

	q := s.db.WithContext(ctx).Model(&model.Task{}).Scopes(byTenant(tenantID), taskFilters(f))
	page, err := listPage[model.Task](q, p, func(db *gorm.DB) *gorm.DB {
		return db.Preload("TaskType").Order("due_date ASC NULLS LAST").Order("id")
	})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return page, nil
}

// Get returns one task with its task type
func (s *TaskService) Get(ctx context.Context, tenantID, taskID string) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).
		Preload("TaskType").
		Where("id = ? AND empresa_id = ?", taskID, tenantID).
		First(&task).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Tarefa '%s' não encontrada", taskID)
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return &task, nil
}

// Create inserts a task, pendente and media unless given otherwise
func (s *TaskService) Create(ctx context.Context, tenantID string, in TaskInput) (*model.Task, error) {
	task := model.Task{
		Title:          in.Title,
		Description:    in.Description,
		TenantID:       tenantID,
		AssignedTo:     in.AssignedTo,
		CreatedBy:      in.CreatedBy,
		LeadID:         in.LeadID,
		PipelineID:     in.PipelineID,
		TaskTypeID:     in.TaskTypeID,
		Status:         stringOr(in.Status, model.TaskStatusPending),
		Priority:       stringOr(in.Priority, model.TaskPriorityMedium),
		DueDate:        in.DueDate,
		DueTime:        in.DueTime,
		EstimatedHours: in.EstimatedHours,
	}
	if in.Tags != nil {
		task.Tags = datatypes.JSONSlice[string](in.Tags)
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	prometheus.RecordDomainOperation("task", "create")

	return s.Get(ctx, tenantID, task.ID)
}

// Update applies the non-nil fields of in to a task
func (s *TaskService) Update(ctx context.Context, tenantID, taskID string, in TaskUpdate) (*model.Task, error) {
	if _, err := s.Get(ctx, tenantID, taskID); err != nil {
		return nil, err
	}

	u := updates{}
	setIf(u, "title", in.Title)
	setIf(u, "description", in.Description)
	setIf(u, "assigned_to", in.AssignedTo)
	setIf(u, "lead_id", in.LeadID)
	setIf(u, "pipeline_id", in.PipelineID)
	setIf(u, "task_type_id", in.TaskTypeID)
	setIf(u, "status", in.Status)
	setIf(u, "priority", in.Priority)
	setIf(u, "due_date", in.DueDate)
	setIf(u, "due_time", in.DueTime)
	setTagsIf(u, "tags", in.Tags)
	setIf(u, "estimated_hours", in.EstimatedHours)
	setIf(u, "actual_hours", in.ActualHours)

	if len(u) == 0 {
		return s.Get(ctx, tenantID, taskID)
	}
	return s.apply(ctx, tenantID, taskID, "update", u)
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, tenantID, taskID string) error {
	if _, err := s.Get(ctx, tenantID, taskID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ?", taskID, tenantID).
		Delete(&model.Task{}).Error
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	prometheus.RecordDomainOperation("task", "delete")
	return nil
}

// Complete marks a task concluida and stamps completed_at
func (s *TaskService) Complete(ctx context.Context, tenantID, taskID string) (*model.Task, error) {
	if _, err := s.Get(ctx, tenantID, taskID); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, taskID, "complete", updates{
		"status":       model.TaskStatusCompleted,
		"completed_at": now(),
	})
}

// Reopen puts a task back to pendente and clears completed_at
func (s *TaskService) Reopen(ctx context.Context, tenantID, taskID string) (*model.Task, error) {
	if _, err := s.Get(ctx, tenantID, taskID); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, taskID, "reopen", updates{
		"status":       model.TaskStatusPending,
		"completed_at": nil,
	})
}

// ListComments returns a task's comments, oldest first
func (s *TaskService) ListComments(ctx context.Context, tenantID, taskID string) ([]model.TaskComment, error) {
	if _, err := s.Get(ctx, tenantID, taskID); err != nil {
		return nil, err
	}

	comments := make([]model.TaskComment, 0)
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("listing task comments: %w", err)
	}
	return comments, nil
}

// CreateComment adds a plain comment to a task
func (s *TaskService) CreateComment(ctx context.Context, tenantID, taskID string, in CommentInput) (*model.TaskComment, error) {
	if _, err := s.Get(ctx, tenantID, taskID); err != nil {
		return nil, err
	}

	comment := model.TaskComment{
		TaskID:  taskID,
		UserID:  in.UserID,
		Comment: in.Comment,
		Type:    model.CommentTypeComment,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("creating task comment: %w", err)
	}
	prometheus.RecordDomainOperation("task_comment", "create")
	return &comment, nil
}

// ListTaskTypes returns the tenant's active task types by name
func (s *TaskService) ListTaskTypes(ctx context.Context, tenantID string) ([]model.TaskType, error) {
	types := make([]model.TaskType, 0)
	err := s.db.WithContext(ctx).
		Scopes(byTenant(tenantID)).
		Where("active = ?", true).
		Order("name").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("listing task types: %w", err)
	}
	return types, nil
}

// apply writes u with a fresh updated_at and returns the re-read task
func (s *TaskService) apply(ctx context.Context, tenantID, taskID, operation string, u updates) (*model.Task, error) {
	u["updated_at"] = now()
	err := s.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ? AND empresa_id = ?", taskID, tenantID).
		Updates(map[string]interface{}(u)).Error
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	prometheus.RecordDomainOperation("task", operation)

	s.log.Debug("Task updated", zap.String("task_id", taskID), zap.String("operation", operation))
	return s.Get(ctx, tenantID, taskID)
}
