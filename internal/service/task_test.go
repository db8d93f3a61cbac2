package service

import (
	"testing"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskDefaultsAndTaskType(t *testing.T) {
	f := newFixture(t)
	taskType := model.TaskType{TenantID: tenantA, Name: "Ligação", Color: "#123", Active: true}
	f.mustCreate(t, &taskType)

	task, err := f.svc.Tasks.Create(f.ctx, tenantA, TaskInput{
		Title:      "Ligar para cliente",
		CreatedBy:  "user-1",
		TaskTypeID: &taskType.ID,
		Tags:       []string{"follow-up"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, model.TaskPriorityMedium, task.Priority)
	assert.Equal(t, tenantA, task.TenantID)
	require.NotNil(t, task.TaskType)
	assert.Equal(t, "Ligação", task.TaskType.Name)

	fetched, err := f.svc.Tasks.Get(f.ctx, tenantA, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, fetched)
}

func TestCompleteAndReopenTask(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.Tasks.Create(f.ctx, tenantA, TaskInput{Title: "Enviar proposta", CreatedBy: "user-1"})
	require.NoError(t, err)

	done, err := f.svc.Tasks.Complete(f.ctx, tenantA, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	reopened, err := f.svc.Tasks.Reopen(f.ctx, tenantA, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)

	_, err = f.svc.Tasks.Complete(f.ctx, tenantB, task.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateTaskPreservesUntouchedFields(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.Tasks.Create(f.ctx, tenantA, TaskInput{
		Title:       "Enviar proposta",
		Description: ptr("PDF com valores"),
		CreatedBy:   "user-1",
		Priority:    ptr("alta"),
		DueDate:     ptr("2025-05-01"),
	})
	require.NoError(t, err)

	updated, err := f.svc.Tasks.Update(f.ctx, tenantA, task.ID, TaskUpdate{ActualHours: ptr(1.5)})
	require.NoError(t, err)
	assert.Equal(t, 1.5, *updated.ActualHours)
	assert.Equal(t, "PDF com valores", *updated.Description)
	assert.Equal(t, "alta", updated.Priority)
	assert.Equal(t, "2025-05-01", *updated.DueDate)
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))
}

func TestListTasksOrdersByDueDateNullsLast(t *testing.T) {
	f := newFixture(t)
	for _, in := range []TaskInput{
		{Title: "sem prazo", CreatedBy: "u"},
		{Title: "depois", CreatedBy: "u", DueDate: ptr("2025-06-10")},
		{Title: "antes", CreatedBy: "u", DueDate: ptr("2025-06-01"), Priority: ptr("alta")},
	} {
		_, err := f.svc.Tasks.Create(f.ctx, tenantA, in)
		require.NoError(t, err)
	}
	_, err := f.svc.Tasks.Create(f.ctx, tenantB, TaskInput{Title: "outra empresa", CreatedBy: "u"})
	require.NoError(t, err)

	page, err := f.svc.Tasks.List(f.ctx, tenantA, TaskFilter{}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	assert.Equal(t, "antes", page.Data[0].Title)
	assert.Equal(t, "depois", page.Data[1].Title)
	assert.Equal(t, "sem prazo", page.Data[2].Title)

	urgent, err := f.svc.Tasks.List(f.ctx, tenantA, TaskFilter{Priority: "alta"}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, urgent.Total)
}

func TestTaskComments(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.Tasks.Create(f.ctx, tenantA, TaskInput{Title: "Reunião", CreatedBy: "user-1"})
	require.NoError(t, err)

	comment, err := f.svc.Tasks.CreateComment(f.ctx, tenantA, task.ID, CommentInput{UserID: "user-2", Comment: "Confirmado"})
	require.NoError(t, err)
	assert.Equal(t, model.CommentTypeComment, comment.Type)
	assert.Equal(t, task.ID, comment.TaskID)

	comments, err := f.svc.Tasks.ListComments(f.ctx, tenantA, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Confirmado", comments[0].Comment)

	_, err = f.svc.Tasks.CreateComment(f.ctx, tenantB, task.ID, CommentInput{UserID: "x", Comment: "invasor"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.Tasks.Create(f.ctx, tenantA, TaskInput{Title: "Reunião", CreatedBy: "user-1"})
	require.NoError(t, err)

	err = f.svc.Tasks.Delete(f.ctx, tenantB, task.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, f.svc.Tasks.Delete(f.ctx, tenantA, task.ID))
	_, err = f.svc.Tasks.Get(f.ctx, tenantA, task.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestListTaskTypes(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t,
		&model.TaskType{TenantID: tenantA, Name: "Visita", Active: true},
		&model.TaskType{TenantID: tenantA, Name: "E-mail", Active: true},
		&model.TaskType{TenantID: tenantA, Name: "Antigo", Active: false},
		&model.TaskType{TenantID: tenantB, Name: "Outro", Active: true},
	)

	types, err := f.svc.Tasks.ListTaskTypes(f.ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "E-mail", types[0].Name)
	assert.Equal(t, "Visita", types[1].Name)
}
