// Package client provides CortexClient, a thin typed facade over the
// transport and framing layers: one method per Cortex v2 RPC (spec.md §4.5).
// CortexClient does not manage a token itself — the caller supplies one on
// every authenticated call; token lifecycle is the resilient client's job
// (package resilient).
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	corelog "github.com/nova-bci/cortex-go/logger"
	"github.com/nova-bci/cortex-go/protocol"
	"github.com/nova-bci/cortex-go/rpc"
	"github.com/nova-bci/cortex-go/stream"
	"github.com/nova-bci/cortex-go/transport"
)

// Config configures a CortexClient connection.
type Config struct {
	Endpoint            string
	InsecureSkipVerify  bool
	RequestTimeout      time.Duration
	StreamQueueCapacity int
	Logger              *slog.Logger
}

// CortexClient is a single-use, single-connection typed client. After
// Disconnect, the instance must not be reused (spec.md §4.5).
type CortexClient struct {
	t *transport.Transport
}

// Connect opens the socket and completes the WebSocket handshake. The
// client is ready for calls once this returns (spec.md §4.5).
func Connect(ctx context.Context, cfg Config) (*CortexClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", protocol.ErrConfig)
	}

	t, err := transport.Connect(ctx, transport.Config{
		Conn: transport.ConnConfig{
			URL:                cfg.Endpoint,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		RequestTimeout:      cfg.RequestTimeout,
		StreamQueueCapacity: cfg.StreamQueueCapacity,
		Logger:              cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &CortexClient{t: t}, nil
}

// Disconnect drives the transport shutdown contract (spec.md §4.3, §4.5).
func (c *CortexClient) Disconnect() error {
	return c.t.Disconnect()
}

// call is the shared helper every typed method funnels through: it encodes
// params, invokes the transport, and decodes the result into dst.
func (c *CortexClient) call(ctx context.Context, method string, params interface{}, dst interface{}) error {
	resp, err := c.t.Call(ctx, method, params, 0)
	if err != nil {
		return err
	}
	return rpc.DecodeResult(resp, dst)
}

// authCall is call, but wraps params with the caller's Cortex token under
// "cortexToken" (spec.md §4.2).
func (c *CortexClient) authCall(ctx context.Context, method, token string, params interface{}, dst interface{}) error {
	wrapped, err := rpc.AuthenticatedParams(token, params)
	if err != nil {
		return fmt.Errorf("%w: %s", protocol.ErrInvalidArgument, err)
	}
	resp, err := c.t.Call(ctx, method, wrapped, 0)
	if err != nil {
		return err
	}
	return rpc.DecodeResult(resp, dst)
}

// --- Authentication ---

// GetCortexInfo returns Cortex service version information.
func (c *CortexClient) GetCortexInfo(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.call(ctx, protocol.MethodGetCortexInfo, nil, &out)
	return out, err
}

// GetUserLogin returns the currently logged-in OS user(s).
func (c *CortexClient) GetUserLogin(ctx context.Context) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	err := c.call(ctx, protocol.MethodGetUserLogin, nil, &out)
	return out, err
}

// RequestAccess requests application access for clientID/clientSecret.
func (c *CortexClient) RequestAccess(ctx context.Context, clientID, clientSecret string) (map[string]interface{}, error) {
	params := map[string]string{"clientId": clientID, "clientSecret": clientSecret}
	var out map[string]interface{}
	err := c.call(ctx, protocol.MethodRequestAccess, params, &out)
	return out, err
}

// HasAccessRight checks whether the application has been granted access.
func (c *CortexClient) HasAccessRight(ctx context.Context, clientID, clientSecret string) (bool, error) {
	params := map[string]string{"clientId": clientID, "clientSecret": clientSecret}
	var out struct {
		AccessGranted bool `json:"accessGranted"`
	}
	err := c.call(ctx, protocol.MethodHasAccessRight, params, &out)
	return out.AccessGranted, err
}

// Authorize exchanges credentials for a Cortex auth token.
func (c *CortexClient) Authorize(ctx context.Context, clientID, clientSecret string, license *string, debit int) (string, error) {
	params := map[string]interface{}{
		"clientId":     clientID,
		"clientSecret": clientSecret,
		"debit":        debit,
	}
	if license != nil {
		params["license"] = *license
	}
	var out struct {
		CortexToken string `json:"cortexToken"`
	}
	err := c.call(ctx, protocol.MethodAuthorize, params, &out)
	if err != nil {
		return "", err
	}
	return out.CortexToken, nil
}

// GenerateNewToken refreshes an existing token.
func (c *CortexClient) GenerateNewToken(ctx context.Context, clientID, clientSecret, token string) (string, error) {
	params := map[string]string{
		"clientId":     clientID,
		"clientSecret": clientSecret,
		"cortexToken":  token,
	}
	var out struct {
		CortexToken string `json:"cortexToken"`
	}
	err := c.call(ctx, protocol.MethodGenerateNewToken, params, &out)
	if err != nil {
		return "", err
	}
	return out.CortexToken, nil
}

// GetUserInformation returns the authenticated user's profile.
func (c *CortexClient) GetUserInformation(ctx context.Context, token string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodGetUserInformation, token, nil, &out)
	return out, err
}

// GetLicenseInfo returns license details for the authenticated user.
func (c *CortexClient) GetLicenseInfo(ctx context.Context, token string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodGetLicenseInfo, token, nil, &out)
	return out, err
}

// --- Headsets ---

// ControlDevice sends a device control command (e.g. "refresh", "connect").
func (c *CortexClient) ControlDevice(ctx context.Context, command string, headsetID string) (map[string]interface{}, error) {
	params := map[string]string{"command": command}
	if headsetID != "" {
		params["headset"] = headsetID
	}
	var out map[string]interface{}
	err := c.call(ctx, protocol.MethodControlDevice, params, &out)
	return out, err
}

// QueryHeadsets lists known headsets, optionally filtered by id.
func (c *CortexClient) QueryHeadsets(ctx context.Context, q protocol.QueryHeadsets) ([]protocol.Headset, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var out []protocol.Headset
	err := c.call(ctx, protocol.MethodQueryHeadsets, q, &out)
	return out, err
}

// UpdateHeadset updates headset settings (e.g. band).
func (c *CortexClient) UpdateHeadset(ctx context.Context, token, headsetID string, settings map[string]interface{}) error {
	params := map[string]interface{}{"headset": headsetID}
	for k, v := range settings {
		params[k] = v
	}
	return c.authCall(ctx, protocol.MethodUpdateHeadset, token, params, nil)
}

// UpdateHeadsetCustomInfo sets caller-defined metadata on a headset.
func (c *CortexClient) UpdateHeadsetCustomInfo(ctx context.Context, token, headsetID string, info map[string]interface{}) error {
	params := map[string]interface{}{"headsetId": headsetID, "headbandPosition": info}
	return c.authCall(ctx, protocol.MethodUpdateHeadsetCustomInfo, token, params, nil)
}

// SyncWithHeadsetClock synchronizes the headset's internal clock. Precise
// semantics of undocumented payload variants are an open question
// (spec.md §9); this sends exactly the documented fields.
func (c *CortexClient) SyncWithHeadsetClock(ctx context.Context, token string, req protocol.HeadsetClockSync) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodSyncWithHeadsetClock, token, req, &out)
	return out, err
}

// ConfigMapping sets or queries a headset's channel mapping mode.
func (c *CortexClient) ConfigMapping(ctx context.Context, token string, req protocol.ConfigMapping) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodConfigMapping, token, req, &out)
	return out, err
}

// --- Sessions ---

// CreateSession opens a new session against a headset.
func (c *CortexClient) CreateSession(ctx context.Context, token, headsetID, status string) (*protocol.Session, error) {
	params := map[string]string{"headset": headsetID, "status": status}
	var out protocol.Session
	err := c.authCall(ctx, protocol.MethodCreateSession, token, params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSession updates a session's status (e.g. to start/stop recording).
func (c *CortexClient) UpdateSession(ctx context.Context, token, sessionID, status string) (*protocol.Session, error) {
	params := map[string]string{"session": sessionID, "status": status}
	var out protocol.Session
	err := c.authCall(ctx, protocol.MethodUpdateSession, token, params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// QuerySessions lists active sessions.
func (c *CortexClient) QuerySessions(ctx context.Context, token string) ([]protocol.Session, error) {
	var out []protocol.Session
	err := c.authCall(ctx, protocol.MethodQuerySessions, token, nil, &out)
	return out, err
}

// --- Streams ---

// Subscribe issues the subscribe RPC for the given streams on a session and
// returns a Receiver per acknowledged stream, keyed by stream kind. Streams
// the server rejects are omitted from the returned map but do not fail the
// whole call — partial subscription success mirrors the Cortex API's own
// per-stream success/failure reporting.
func (c *CortexClient) Subscribe(ctx context.Context, token, sessionID string, streams []protocol.StreamKind) (map[protocol.StreamKind]*stream.Receiver, error) {
	names := make([]string, len(streams))
	for i, s := range streams {
		names[i] = string(s)
	}
	params := map[string]interface{}{"session": sessionID, "streams": names}

	var out struct {
		Success []struct {
			StreamName string `json:"streamName"`
		} `json:"success"`
		Failure []struct {
			StreamName string `json:"streamName"`
			Message    string `json:"message"`
		} `json:"failure"`
	}
	if err := c.authCall(ctx, protocol.MethodSubscribe, token, params, &out); err != nil {
		return nil, err
	}

	receivers := make(map[protocol.StreamKind]*stream.Receiver, len(out.Success))
	for _, ok := range out.Success {
		kind := protocol.StreamKind(ok.StreamName)
		receivers[kind] = c.t.Subscribe(kind, sessionID)
		corelog.StreamSubscribed(ok.StreamName, sessionID)
	}
	for _, fail := range out.Failure {
		corelog.Warn("stream subscribe rejected", "stream", fail.StreamName, "session", sessionID, "reason", fail.Message)
	}
	return receivers, nil
}

// Unsubscribe issues the unsubscribe RPC and stops routing further events to
// the corresponding local queues. Per spec.md §4.4/§8, this leaves the
// active-subscription set unchanged if called again for the same pair (it
// is idempotent: unsubscribing twice is not an error at this layer).
func (c *CortexClient) Unsubscribe(ctx context.Context, token, sessionID string, streams []protocol.StreamKind) error {
	names := make([]string, len(streams))
	for i, s := range streams {
		names[i] = string(s)
	}
	params := map[string]interface{}{"session": sessionID, "streams": names}
	err := c.authCall(ctx, protocol.MethodUnsubscribe, token, params, nil)
	for _, s := range streams {
		c.t.UnsubscribeQueue(s, sessionID)
	}
	return err
}

// --- Records & markers ---

// CreateRecord starts a new data recording on a session.
func (c *CortexClient) CreateRecord(ctx context.Context, token, sessionID, title string) (*protocol.Record, error) {
	params := map[string]string{"session": sessionID, "title": title}
	var out protocol.Record
	err := c.authCall(ctx, protocol.MethodCreateRecord, token, params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StopRecord ends the active recording on a session.
func (c *CortexClient) StopRecord(ctx context.Context, token, sessionID string) (*protocol.Record, error) {
	params := map[string]string{"session": sessionID}
	var out protocol.Record
	err := c.authCall(ctx, protocol.MethodStopRecord, token, params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord updates a record's metadata.
func (c *CortexClient) UpdateRecord(ctx context.Context, token string, req protocol.UpdateRecord) (*protocol.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out protocol.Record
	err := c.authCall(ctx, protocol.MethodUpdateRecord, token, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord deletes one or more records by id.
func (c *CortexClient) DeleteRecord(ctx context.Context, token string, recordIDs []string) error {
	if len(recordIDs) == 0 {
		return fmt.Errorf("%w: at least one record id is required", protocol.ErrInvalidArgument)
	}
	params := map[string]interface{}{"records": recordIDs}
	return c.authCall(ctx, protocol.MethodDeleteRecord, token, params, nil)
}

// ExportRecord exports records to disk in the given format.
func (c *CortexClient) ExportRecord(ctx context.Context, token string, recordIDs []string, folder, format string, streamTypes []string) (map[string]interface{}, error) {
	if len(recordIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one record id is required", protocol.ErrInvalidArgument)
	}
	params := map[string]interface{}{
		"recordIds":   recordIDs,
		"folder":      folder,
		"format":      format,
		"streamTypes": streamTypes,
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodExportRecord, token, params, &out)
	return out, err
}

// QueryRecords searches records.
func (c *CortexClient) QueryRecords(ctx context.Context, token string, query map[string]interface{}, limit int) ([]protocol.Record, error) {
	params := map[string]interface{}{"query": query, "limit": limit}
	var out struct {
		Records []protocol.Record `json:"records"`
	}
	err := c.authCall(ctx, protocol.MethodQueryRecords, token, params, &out)
	return out.Records, err
}

// GetRecordInfos fetches detailed record metadata by id.
func (c *CortexClient) GetRecordInfos(ctx context.Context, token string, recordIDs []string) ([]protocol.Record, error) {
	params := map[string]interface{}{"records": recordIDs}
	var out []protocol.Record
	err := c.authCall(ctx, protocol.MethodGetRecordInfos, token, params, &out)
	return out, err
}

// ConfigOptOut sets or queries the data opt-out flag for a user.
func (c *CortexClient) ConfigOptOut(ctx context.Context, token string, status string, newStatus *bool) (map[string]interface{}, error) {
	params := map[string]interface{}{"status": status}
	if newStatus != nil {
		params["newOptOutStatus"] = *newStatus
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodConfigOptOut, token, params, &out)
	return out, err
}

// RequestToDownloadRecordData requests an export-and-download bundle.
func (c *CortexClient) RequestToDownloadRecordData(ctx context.Context, token, recordID string) (map[string]interface{}, error) {
	params := map[string]string{"recordId": recordID}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodRequestToDownloadRecordData, token, params, &out)
	return out, err
}

// InjectMarker inserts a marker event into the active recording.
func (c *CortexClient) InjectMarker(ctx context.Context, token, sessionID, label string, value interface{}, t time.Time) (map[string]interface{}, error) {
	params := map[string]interface{}{
		"session": sessionID,
		"label":   label,
		"value":   value,
		"time":    t.UnixMilli(),
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodInjectMarker, token, params, &out)
	return out, err
}

// UpdateMarker updates an existing marker's end time/value.
func (c *CortexClient) UpdateMarker(ctx context.Context, token, sessionID, markerID string, t time.Time) (map[string]interface{}, error) {
	params := map[string]interface{}{
		"session": sessionID,
		"markerId": markerID,
		"time":     t.UnixMilli(),
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodUpdateMarker, token, params, &out)
	return out, err
}

// --- Subjects ---

// CreateSubject creates a new subject record.
func (c *CortexClient) CreateSubject(ctx context.Context, token string, req protocol.SubjectRequest) (*protocol.Subject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out protocol.Subject
	err := c.authCall(ctx, protocol.MethodCreateSubject, token, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSubject updates an existing subject record.
func (c *CortexClient) UpdateSubject(ctx context.Context, token string, req protocol.SubjectRequest) (*protocol.Subject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out protocol.Subject
	err := c.authCall(ctx, protocol.MethodUpdateSubject, token, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSubjects deletes subjects by name.
func (c *CortexClient) DeleteSubjects(ctx context.Context, token string, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one subject name is required", protocol.ErrInvalidArgument)
	}
	params := map[string]interface{}{"subjects": names}
	return c.authCall(ctx, protocol.MethodDeleteSubjects, token, params, nil)
}

// QuerySubjects searches subjects.
func (c *CortexClient) QuerySubjects(ctx context.Context, token string, q protocol.QuerySubjects) ([]protocol.Subject, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var out []protocol.Subject
	err := c.authCall(ctx, protocol.MethodQuerySubjects, token, q, &out)
	return out, err
}

// GetDemographicAttributes returns recognized demographic attribute names.
func (c *CortexClient) GetDemographicAttributes(ctx context.Context, token string) ([]string, error) {
	var out []string
	err := c.authCall(ctx, protocol.MethodGetDemographicAttributes, token, nil, &out)
	return out, err
}

// --- Profiles ---

// QueryProfile lists available training profiles.
func (c *CortexClient) QueryProfile(ctx context.Context, token string) ([]protocol.Profile, error) {
	var out []protocol.Profile
	err := c.authCall(ctx, protocol.MethodQueryProfile, token, nil, &out)
	return out, err
}

// GetCurrentProfile returns the profile currently loaded on a headset.
func (c *CortexClient) GetCurrentProfile(ctx context.Context, token, headsetID string) (*protocol.Profile, error) {
	params := map[string]string{"headset": headsetID}
	var out protocol.Profile
	err := c.authCall(ctx, protocol.MethodGetCurrentProfile, token, params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupProfile creates, loads, unloads, saves, renames, or deletes a
// profile, depending on status.
func (c *CortexClient) SetupProfile(ctx context.Context, token, status, profile, headsetID, newName string) (map[string]interface{}, error) {
	params := map[string]interface{}{"status": status, "profile": profile}
	if headsetID != "" {
		params["headset"] = headsetID
	}
	if newName != "" {
		params["newProfileName"] = newName
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodSetupProfile, token, params, &out)
	return out, err
}

// LoadGuestProfile loads the default guest profile onto a headset.
func (c *CortexClient) LoadGuestProfile(ctx context.Context, token, headsetID string) (map[string]interface{}, error) {
	params := map[string]string{"headset": headsetID}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodLoadGuestProfile, token, params, &out)
	return out, err
}

// --- BCI ---

// Training drives the mental-command/facial-expression training state
// machine (start, accept, reject, erase, reset).
func (c *CortexClient) Training(ctx context.Context, token, sessionID, detection, action, status string) (*protocol.TrainingState, error) {
	params := map[string]string{
		"session":   sessionID,
		"detection": detection,
		"action":    action,
		"status":    status,
	}
	var out protocol.TrainingState
	err := c.authCall(ctx, protocol.MethodTraining, token, params, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDetectionInfo returns the actions/controls available for a detection.
func (c *CortexClient) GetDetectionInfo(ctx context.Context, detection string) (map[string]interface{}, error) {
	params := map[string]string{"detection": detection}
	var out map[string]interface{}
	err := c.call(ctx, protocol.MethodGetDetectionInfo, params, &out)
	return out, err
}

// GetTrainedSignatureActions returns the actions a profile has trained
// signatures for.
func (c *CortexClient) GetTrainedSignatureActions(ctx context.Context, token, detection, session, profile string) ([]string, error) {
	params := map[string]string{"detection": detection}
	if session != "" {
		params["session"] = session
	}
	if profile != "" {
		params["profile"] = profile
	}
	var out []string
	err := c.authCall(ctx, protocol.MethodGetTrainedSignatureActions, token, params, &out)
	return out, err
}

// GetTrainingTime returns the elapsed time of the current training.
func (c *CortexClient) GetTrainingTime(ctx context.Context, token, detection, session string) (float64, error) {
	params := map[string]string{"detection": detection, "session": session}
	var out struct {
		Time float64 `json:"time"`
	}
	err := c.authCall(ctx, protocol.MethodGetTrainingTime, token, params, &out)
	return out.Time, err
}

// FacialExpressionSignatureType gets or sets a profile's signature type.
func (c *CortexClient) FacialExpressionSignatureType(ctx context.Context, token string, req protocol.FacialExpressionSignatureType) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodFacialExpressionSignatureType, token, req, &out)
	return out, err
}

// FacialExpressionThreshold gets or sets a facial-expression action's
// sensitivity threshold.
func (c *CortexClient) FacialExpressionThreshold(ctx context.Context, token string, req protocol.FacialExpressionThreshold) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodFacialExpressionThreshold, token, req, &out)
	return out, err
}

// MentalCommandActiveAction gets or sets the active mental-command action set.
func (c *CortexClient) MentalCommandActiveAction(ctx context.Context, token, status, session, profile string, actions []string) (map[string]interface{}, error) {
	params := map[string]interface{}{"status": status}
	if session != "" {
		params["session"] = session
	}
	if profile != "" {
		params["profile"] = profile
	}
	if actions != nil {
		params["actions"] = actions
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodMentalCommandActiveAction, token, params, &out)
	return out, err
}

// MentalCommandBrainMap returns the current mental-command brain map.
func (c *CortexClient) MentalCommandBrainMap(ctx context.Context, token, session, profile string) ([]map[string]interface{}, error) {
	params := map[string]string{}
	if session != "" {
		params["session"] = session
	}
	if profile != "" {
		params["profile"] = profile
	}
	var out []map[string]interface{}
	err := c.authCall(ctx, protocol.MethodMentalCommandBrainMap, token, params, &out)
	return out, err
}

// MentalCommandTrainingThreshold gets or sets a mental-command training
// threshold.
func (c *CortexClient) MentalCommandTrainingThreshold(ctx context.Context, token string, req protocol.MentalCommandTrainingThreshold) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out map[string]interface{}
	err := c.authCall(ctx, protocol.MethodMentalCommandTrainingThreshold, token, req, &out)
	return out, err
}

// MentalCommandActionSensitivity gets or sets per-action sensitivity levels.
func (c *CortexClient) MentalCommandActionSensitivity(ctx context.Context, token, status, session, profile string, levels []int) ([]int, error) {
	params := map[string]interface{}{"status": status}
	if session != "" {
		params["session"] = session
	}
	if profile != "" {
		params["profile"] = profile
	}
	if levels != nil {
		params["values"] = levels
	}
	var out []int
	err := c.authCall(ctx, protocol.MethodMentalCommandActionSensitivity, token, params, &out)
	return out, err
}

// PendingCount exposes the underlying transport's pending-request count,
// mainly for tests (spec.md §8).
func (c *CortexClient) PendingCount() int {
	return c.t.PendingCount()
}
