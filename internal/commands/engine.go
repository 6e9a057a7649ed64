// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package commands implements the synchronous command surface from
// spec.md §6: one method per UI-facing RPC, each returning (T, error)
// with errors shaped by seekkberr. Every method first checks that the
// engine has finished bootstrap.Run, surfacing ErrInitializing otherwise.
package commands

import (
	"context"
	"strings"

	"github.com/northbound/seekkb/internal/bootstrap"
	"github.com/northbound/seekkb/internal/chat"
	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/eventbus"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/seekkberr"
	"github.com/northbound/seekkb/internal/store"
)

// chatPipelineEvent aliases chat.Event so this package's exported
// SendMessage signature doesn't force callers to import internal/chat
// just to name the event type.
type chatPipelineEvent = chat.Event

// Engine exposes the command surface over a bootstrap.Holder, so it can be
// constructed before startup completes and simply starts returning real
// results once Holder.Get stops erroring.
type Engine struct {
	holder      *bootstrap.Holder
	bus         *eventbus.Bus
	configPath  string
}

// New builds an Engine over holder, publishing document_processing and
// project_status events on bus during ingestion.
func New(holder *bootstrap.Holder, bus *eventbus.Bus, configPath string) *Engine {
	return &Engine{holder: holder, bus: bus, configPath: configPath}
}

func (e *Engine) ready() (*bootstrap.State, error) {
	return e.holder.Get()
}

// --- Project ---

// ProjectDetails is get_project_details' output: the Project plus its
// Documents.
type ProjectDetails struct {
	Project   store.Project
	Documents []store.Document
}

// CreateProject implements create_project(name, description?, file_paths[]):
// creates the Project, then ingests file_paths through the same per-file
// path upload_documents uses.
func (e *Engine) CreateProject(ctx context.Context, name, description string, filePaths []string) (store.Project, []ingest.Result, error) {
	st, err := e.ready()
	if err != nil {
		return store.Project{}, nil, err
	}
	project, err := st.Store.CreateProject(name, description)
	if err != nil {
		return store.Project{}, nil, err
	}
	if len(filePaths) == 0 {
		return project, nil, nil
	}

	e.bus.Publish(eventbus.Event{Kind: eventbus.ProjectStatus, ClientID: project.ID, Status: "progress", Message: "ingesting uploaded files"})
	results, summary := st.Ingest.UploadDocuments(ctx, project.ID, filePaths)
	status := store.ProjectReady
	if summary.Failed > 0 && summary.Successful == 0 {
		status = store.ProjectError
	}
	_ = st.Store.SetProjectStatus(project.ID, status)
	e.bus.Publish(eventbus.Event{Kind: eventbus.ProjectStatus, ClientID: project.ID, Status: "success", Message: "ingestion complete"})

	project, err = st.Store.GetProject(project.ID)
	return project, results, err
}

// GetProjects implements get_projects().
func (e *Engine) GetProjects() ([]store.Project, error) {
	st, err := e.ready()
	if err != nil {
		return nil, err
	}
	return st.Store.ListProjects()
}

// GetProjectDetails implements get_project_details(id).
func (e *Engine) GetProjectDetails(id string) (ProjectDetails, error) {
	st, err := e.ready()
	if err != nil {
		return ProjectDetails{}, err
	}
	project, err := st.Store.GetProject(id)
	if err != nil {
		return ProjectDetails{}, err
	}
	docs, err := st.Store.ListDocuments(id)
	if err != nil {
		return ProjectDetails{}, err
	}
	return ProjectDetails{Project: project, Documents: docs}, nil
}

// DeleteProject implements delete_project(id).
func (e *Engine) DeleteProject(id string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	return st.Store.DeleteProject(id)
}

// RenameProject implements rename_project(id, new_name).
func (e *Engine) RenameProject(id, newName string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	return st.Store.RenameProject(id, newName)
}

// --- Document ---

// ValidateFiles implements validate_files(paths[]).
func (e *Engine) ValidateFiles(projectID string, paths []string) (ingest.ValidationResult, error) {
	st, err := e.ready()
	if err != nil {
		return ingest.ValidationResult{}, err
	}
	maxSize := st.Config.App.MaxFileSizeBytes
	dup := func(projectID, hash string) (bool, error) {
		doc, err := st.Store.FindDocumentByHash(projectID, hash)
		if err != nil {
			return false, err
		}
		// A Failed match is a retry candidate, not a duplicate (spec.md §3's
		// Failed->Processing transition); only a non-Failed match blocks.
		return doc != nil && doc.ProcessingStatus != store.DocumentFailed, nil
	}
	return ingest.ValidateFiles(projectID, paths, maxSize, dup)
}

// UploadDocuments implements upload_documents(project_id, paths[]).
func (e *Engine) UploadDocuments(ctx context.Context, projectID string, paths []string) ([]ingest.Result, ingest.Summary, error) {
	st, err := e.ready()
	if err != nil {
		return nil, ingest.Summary{}, err
	}
	if len(paths) == 0 {
		return nil, ingest.Summary{}, nil
	}

	e.bus.Publish(eventbus.Event{Kind: eventbus.DocumentProcessing, ClientID: projectID, Status: "progress", Message: "uploading documents"})
	results, summary := st.Ingest.UploadDocuments(ctx, projectID, paths)
	e.bus.Publish(eventbus.Event{Kind: eventbus.DocumentProcessing, ClientID: projectID, Status: "success", Message: "upload complete"})
	return results, summary, nil
}

// GetDocumentContent implements get_document_content(id): the document's
// chunks, in order, concatenated back into a single text.
func (e *Engine) GetDocumentContent(id string) (string, error) {
	st, err := e.ready()
	if err != nil {
		return "", err
	}
	chunks, err := st.Store.ListChunksForDocument(id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n"), nil
}

// --- Chat ---

// CreateConversation implements create_conversation(project_id, title?).
func (e *Engine) CreateConversation(projectID, title string) (store.Conversation, error) {
	st, err := e.ready()
	if err != nil {
		return store.Conversation{}, err
	}
	return st.Store.CreateConversation(projectID, title)
}

// GetConversations implements get_conversations(project_id).
func (e *Engine) GetConversations(projectID string) ([]store.Conversation, error) {
	st, err := e.ready()
	if err != nil {
		return nil, err
	}
	return st.Store.ListConversations(projectID)
}

// SendMessage implements send_message(conversation_id, content), forwarding
// the chat pipeline's lifecycle events onto the chat-stream event surface
// (spec.md §6) in addition to returning them to the direct caller.
func (e *Engine) SendMessage(ctx context.Context, conversationID, content string) (<-chan chatPipelineEvent, error) {
	st, err := e.ready()
	if err != nil {
		return nil, err
	}
	events, err := st.Chat.SendMessage(ctx, conversationID, content)
	if err != nil {
		return nil, err
	}

	out := make(chan chatPipelineEvent, 8)
	go func() {
		defer close(out)
		for ev := range events {
			e.publishChatEvent(conversationID, ev)
			out <- ev
		}
	}()
	return out, nil
}

// GetConversationHistory implements get_conversation_history(conversation_id, limit?, offset?).
func (e *Engine) GetConversationHistory(conversationID string, limit, offset int) ([]store.Message, error) {
	st, err := e.ready()
	if err != nil {
		return nil, err
	}
	all, err := st.Store.ListMessages(conversationID)
	if err != nil {
		return nil, err
	}
	return paginate(all, limit, offset), nil
}

func paginate(messages []store.Message, limit, offset int) []store.Message {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(messages) {
		return []store.Message{}
	}
	end := len(messages)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return messages[offset:end]
}

// DeleteConversation implements delete_conversation(id).
func (e *Engine) DeleteConversation(id string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	return st.Store.DeleteConversation(id)
}

// DeleteMessage implements delete_message(conversation_id, id).
func (e *Engine) DeleteMessage(conversationID, id string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	if err := st.Store.DeleteMessage(id); err != nil {
		return err
	}
	count, err := st.Store.CountMessages(conversationID)
	if err != nil {
		return err
	}
	return st.Store.TouchConversation(conversationID, count)
}

// ClearMessages implements clear_messages(conversation_id).
func (e *Engine) ClearMessages(conversationID string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	if err := st.Store.ClearMessages(conversationID); err != nil {
		return err
	}
	return st.Store.TouchConversation(conversationID, 0)
}

// RenameConversation implements rename_conversation(id, title).
func (e *Engine) RenameConversation(id, title string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	return st.Store.RenameConversation(id, title)
}

// --- System ---

// AppStatus is get_app_status()'s output.
type AppStatus struct {
	Ready        bool
	StorageAlive bool
	ProjectCount int
}

// GetAppStatus implements get_app_status().
func (e *Engine) GetAppStatus() (AppStatus, error) {
	st, err := e.ready()
	if err != nil {
		return AppStatus{Ready: false}, nil
	}
	alive := st.Store.Ping() == nil
	projects, err := st.Store.ListProjects()
	if err != nil {
		return AppStatus{Ready: true, StorageAlive: alive}, nil
	}
	return AppStatus{Ready: true, StorageAlive: alive, ProjectCount: len(projects)}, nil
}

// ConfigureLLMService implements configure_llm_service(provider, api_key?, model, base_url?),
// persisting the new credentials to disk. Taking effect for the running
// engine requires a restart (the Holder's State is immutable once
// published); this mirrors the desktop shell's own config-then-relaunch
// flow described nowhere explicitly, but consistent with spec.md §9's
// framing of configuration as load-once.
func (e *Engine) ConfigureLLMService(provider, apiKey, model, baseURL string) error {
	st, err := e.ready()
	if err != nil {
		return err
	}
	cfg := *st.Config
	if provider != "" {
		cfg.API.Provider = provider
	}
	if apiKey != "" {
		cfg.API.APIKey = apiKey
	}
	if model != "" {
		cfg.API.ChatModel = model
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	return config.Save(&cfg, e.configPath)
}

// CheckInitializationStatus implements check_initialization_status().
func (e *Engine) CheckInitializationStatus() bool {
	_, err := e.ready()
	return err == nil
}

func (e *Engine) publishChatEvent(conversationID string, ev chatPipelineEvent) {
	evt := eventbus.Event{Kind: eventbus.ChatStream, ClientID: conversationID}
	switch ev.Kind {
	case "start":
		return
	case "context":
		evt.Type = "context"
		for _, s := range ev.Sources {
			evt.Sources = append(evt.Sources, eventbus.Source{Filename: s.Filename, RelevanceScore: s.RelevanceScore})
		}
	case "token":
		evt.Type = "token"
		evt.Content = ev.Delta
	case "end":
		evt.Type = "complete"
		evt.FullText = ev.FullText
	case "error":
		evt.Type = "error"
		if ev.Err != nil {
			evt.Error = seekkberr.ToAPIError(ev.Err).Message
		}
	}
	e.bus.Publish(evt)
}
