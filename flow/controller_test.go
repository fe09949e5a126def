package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/ruteri/vc-storage-client/api/authservice"
	"github.com/ruteri/vc-storage-client/api/filemanager"
	"github.com/ruteri/vc-storage-client/blobstore"
	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	controller *Controller
	exchanger  *authservice.MockExchanger
	files      *filemanager.MockFileManager
	handles    *blobstore.Registry
}

func newControllerFixture() *controllerFixture {
	exchanger := new(authservice.MockExchanger)
	files := new(filemanager.MockFileManager)
	handles := blobstore.NewRegistry(testLogger())
	o := NewOrchestrator(exchanger, files, testLogger())
	return &controllerFixture{
		controller: NewController(o, handles, testLogger()),
		exchanger:  exchanger,
		files:      files,
		handles:    handles,
	}
}

// retrieved mimics the file manager client: every returned file owns a fresh handle.
func (f *controllerFixture) retrieved(cid interfaces.CID, data string) *interfaces.RetrievedFile {
	return &interfaces.RetrievedFile{
		CID:      cid,
		Data:     []byte(data),
		MIMEType: "text/plain",
		Filename: "download",
		Handle:   f.handles.Allocate([]byte(data), "text/plain", "download"),
	}
}

func TestController_InitialState(t *testing.T) {
	f := newControllerFixture()
	assert.Equal(t, TabUpload, f.controller.Selected())
	assert.Equal(t, State{Tab: TabUpload, Phase: PhaseIdle}, f.controller.State())
	assert.False(t, f.controller.Busy())
	assert.Nil(t, f.controller.DisplayedFile())
}

func TestController_ReplacingFileReleasesPriorHandle(t *testing.T) {
	f := newControllerFixture()
	first := f.retrieved("Qm1", "one")
	second := f.retrieved("Qm2", "two")
	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm1"), interfaces.Anonymous{}).Return(first, nil).Once()
	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm2"), interfaces.Anonymous{}).Return(second, nil).Once()

	st, err := f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{CID: "Qm1"})
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, st.Phase)
	assert.Equal(t, TabViewVC, f.controller.Selected())

	st, err = f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{CID: "Qm2"})
	require.NoError(t, err)
	assert.Same(t, second, st.File)
	assert.Same(t, second, f.controller.DisplayedFile())

	assert.Equal(t, 1, f.handles.Live())
	_, ok := f.handles.Open(first.Handle)
	assert.False(t, ok)
	_, ok = f.handles.Open(second.Handle)
	assert.True(t, ok)
}

func TestController_SelectClearsErrorAndFile(t *testing.T) {
	f := newControllerFixture()
	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm1"), interfaces.IssuerIdentity{IssuerDID: "did:x:issuer"}).
		Return(f.retrieved("Qm1", "one"), nil).Once()

	_, err := f.controller.ViewAsIssuer(context.Background(), "Qm1", "did:x:issuer")
	require.NoError(t, err)
	require.Equal(t, 1, f.handles.Live())

	st, err := f.controller.Select(TabView)
	require.NoError(t, err)
	assert.Nil(t, st.File)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, 0, f.handles.Live())
	assert.Nil(t, f.controller.DisplayedFile())

	_, err = f.controller.ViewAsIssuer(context.Background(), "", "did:x:issuer")
	require.ErrorIs(t, err, interfaces.ErrValidation)
	assert.Equal(t, PhaseFailed, f.controller.State().Phase)

	st, err = f.controller.Select(TabUpload)
	require.NoError(t, err)
	assert.Equal(t, TabUpload, st.Tab)

	st, err = f.controller.Select(TabView)
	require.NoError(t, err)
	assert.NoError(t, st.Err)
	assert.Equal(t, PhaseIdle, st.Phase)
}

func TestController_SelectKeepsUploadAndVCResults(t *testing.T) {
	f := newControllerFixture()
	f.files.On("Upload", mock.Anything, mock.Anything).Return(&interfaces.UploadResult{CID: "Qm9"}, nil).Once()

	_, err := f.controller.Upload(context.Background(), interfaces.UploadRequest{Content: []byte("x"), IssuerDID: "did:x:issuer"})
	require.NoError(t, err)

	_, err = f.controller.Select(TabCreateVC)
	require.NoError(t, err)
	st, err := f.controller.Select(TabUpload)
	require.NoError(t, err)
	require.NotNil(t, st.Upload)
	assert.Equal(t, interfaces.CID("Qm9"), st.Upload.CID)
	assert.Equal(t, PhaseSucceeded, st.Phase)
}

func TestController_InvalidTab(t *testing.T) {
	f := newControllerFixture()
	_, err := f.controller.Select("settings")
	assert.ErrorIs(t, err, interfaces.ErrValidation)
	assert.Equal(t, TabUpload, f.controller.Selected())
}

func TestController_FailureClearsResult(t *testing.T) {
	f := newControllerFixture()
	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm1"), interfaces.Anonymous{}).Return(f.retrieved("Qm1", "one"), nil).Once()
	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm404"), interfaces.Anonymous{}).
		Return(nil, &interfaces.RequestError{Kind: interfaces.ErrFileRetrievalFailed, StatusCode: 404, Status: "Not Found"}).Once()

	_, err := f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{CID: "Qm1"})
	require.NoError(t, err)

	st, err := f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{CID: "Qm404"})
	require.ErrorIs(t, err, interfaces.ErrFileRetrievalFailed)
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Nil(t, st.File)
	assert.ErrorIs(t, st.Err, interfaces.ErrFileRetrievalFailed)
	assert.Equal(t, 0, f.handles.Live())
}

func TestController_BusyRejectsSecondSubmission(t *testing.T) {
	f := newControllerFixture()
	started := make(chan struct{})
	proceed := make(chan struct{})

	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm1"), interfaces.Anonymous{}).
		Run(func(mock.Arguments) {
			close(started)
			<-proceed
		}).
		Return(f.retrieved("Qm1", "one"), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{CID: "Qm1"})
		done <- err
	}()

	<-started
	assert.True(t, f.controller.Busy())
	assert.Equal(t, PhaseLoading, f.controller.State().Phase)

	_, err := f.controller.Upload(context.Background(), interfaces.UploadRequest{Content: []byte("x")})
	assert.ErrorIs(t, err, interfaces.ErrBusy)

	close(proceed)
	require.NoError(t, <-done)
	assert.False(t, f.controller.Busy())
	f.files.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestController_DiscardsSupersededResult(t *testing.T) {
	f := newControllerFixture()
	started := make(chan struct{})
	proceed := make(chan struct{})
	var runCtx context.Context

	late := f.retrieved("Qm1", "late")
	f.exchanger.On("ExchangePresentation", mock.Anything, mock.Anything, mock.Anything).
		Return(interfaces.AuthorizationToken("tok"), nil).Once()
	f.files.On("RetrieveFile", mock.Anything, interfaces.CID("Qm1"), interfaces.Bearer{Token: "tok"}).
		Run(func(args mock.Arguments) {
			runCtx = args.Get(0).(context.Context)
			close(started)
			<-proceed
		}).
		Return(late, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{
			CID:       "Qm1",
			HolderDID: "did:x:viewer",
			VCToken:   "vc",
		})
		done <- err
	}()

	<-started
	_, err := f.controller.Select(TabUpload)
	require.NoError(t, err)
	assert.ErrorIs(t, runCtx.Err(), context.Canceled)

	close(proceed)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	assert.Equal(t, 0, f.handles.Live())
	assert.Nil(t, f.controller.DisplayedFile())
	assert.Equal(t, TabUpload, f.controller.Selected())

	_, err = f.controller.Select(TabViewVC)
	require.NoError(t, err)
	st := f.controller.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.File)
}

func TestController_Close(t *testing.T) {
	f := newControllerFixture()
	f.files.On("RetrieveFile", mock.Anything, mock.Anything, mock.Anything).Return(f.retrieved("Qm1", "one"), nil).Once()

	_, err := f.controller.ViewByCredential(context.Background(), ViewByCredentialRequest{CID: "Qm1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.handles.Live())

	f.controller.Close()
	assert.Equal(t, 0, f.handles.Live())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		tab      Tab
		err      error
		expected string
	}{
		{"nil", TabView, nil, ""},
		{"network", TabViewVC, &interfaces.NetworkError{Op: "fetch", Err: errors.New("connection refused")}, NetworkErrorMessage},
		{"validation", TabViewVC, interfaces.Required("cid", "Please enter a CID"), "Please enter a CID"},
		{"upload validation", TabUpload, interfaces.Required("file", "Please select a file to upload"), "Upload failed: Please select a file to upload"},
		{"permission", TabView, &interfaces.RequestError{Kind: interfaces.ErrPermissionDenied, StatusCode: 401}, "Permission denied"},
		{"malformed", TabViewVC, interfaces.ErrMalformedPresentationResponse, "No data field found in presentation response"},
		{"busy", TabUpload, interfaces.ErrBusy, "A request is already in progress"},
		{
			"presentation",
			TabViewVC,
			&interfaces.RequestError{Kind: interfaces.ErrPresentationExchangeFailed, StatusCode: 403, Status: "Forbidden", Body: "no"},
			"Presentation failed: 403 Forbidden - no",
		},
		{
			"file access",
			TabViewVC,
			&interfaces.RequestError{Kind: interfaces.ErrFileRetrievalFailed, StatusCode: 500, Status: "Internal Server Error", Body: "boom"},
			"File access failed: 500 Internal Server Error - boom",
		},
		{
			"issuer fetch",
			TabView,
			&interfaces.RequestError{Kind: interfaces.ErrFileRetrievalFailed, StatusCode: 404, Status: "Not Found"},
			"Failed to fetch file: 404 Not Found",
		},
		{
			"upload",
			TabUpload,
			&interfaces.RequestError{Kind: interfaces.ErrUploadFailed, StatusCode: 400, Status: "Bad Request", Body: "bad"},
			"Upload failed: 400 Bad Request - bad",
		},
		{
			"vc creation",
			TabCreateVC,
			&interfaces.RequestError{Kind: interfaces.ErrCredentialIssuanceFailed, StatusCode: 404, Status: "Not Found", Body: "unknown cid"},
			"VC creation failed: 404 Not Found - unknown cid",
		},
		{"other upload", TabUpload, errors.New("disk full"), "Upload failed: disk full"},
		{"other", TabCreateVC, errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Message(tt.tab, tt.err))
		})
	}
}
