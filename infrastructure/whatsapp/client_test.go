package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

type fakeAPI struct {
	connected bool
	loggedIn  bool

	registered map[string]types.JID
	lookupErr  error
	queries    [][]string

	uploads []whatsmeow.MediaType
	sent    []*waE2E.Message
	sentTo  []types.JID
	sendErr error
}

func (f *fakeAPI) IsConnected() bool { return f.connected }
func (f *fakeAPI) IsLoggedIn() bool  { return f.loggedIn }

func (f *fakeAPI) IsOnWhatsApp(_ context.Context, phones []string) ([]types.IsOnWhatsAppResponse, error) {
	f.queries = append(f.queries, phones)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var out []types.IsOnWhatsAppResponse
	for _, phone := range phones {
		jid, ok := f.registered[phone]
		out = append(out, types.IsOnWhatsAppResponse{Query: phone, JID: jid, IsIn: ok})
	}
	return out, nil
}

func (f *fakeAPI) Upload(_ context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error) {
	f.uploads = append(f.uploads, appInfo)
	return whatsmeow.UploadResponse{
		URL:        "https://mmg.whatsapp.net/test",
		DirectPath: "/v/test",
		FileLength: uint64(len(plaintext)),
		MediaKey:   []byte("key"),
	}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, to types.JID, message *waE2E.Message, _ ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	if f.sendErr != nil {
		return whatsmeow.SendResponse{}, f.sendErr
	}
	f.sentTo = append(f.sentTo, to)
	f.sent = append(f.sent, message)
	return whatsmeow.SendResponse{}, nil
}

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestClient_State(t *testing.T) {
	api := &fakeAPI{}
	client := &Client{api: api}

	assert.Equal(t, StateDisconnected, client.State(context.Background()))
	assert.False(t, client.IsReady())

	api.connected = true
	assert.Equal(t, StateConnecting, client.State(context.Background()))
	assert.False(t, client.IsReady())

	api.loggedIn = true
	assert.Equal(t, StateConnected, client.State(context.Background()))
	assert.True(t, client.IsReady())

	assert.Equal(t, StateDisconnected, (&Client{}).State(context.Background()))
}

func TestClient_ResolveNumber(t *testing.T) {
	jid := types.NewJID("15550000001", types.DefaultUserServer)
	api := &fakeAPI{registered: map[string]types.JID{"+15550000001": jid}}
	client := &Client{api: api}

	got, err := client.ResolveNumber(context.Background(), "15550000001")
	require.NoError(t, err)
	assert.Equal(t, "15550000001@s.whatsapp.net", got)
	assert.Equal(t, []string{"+15550000001"}, api.queries[0])

	got, err = client.ResolveNumber(context.Background(), "15550000009")
	require.NoError(t, err)
	assert.Empty(t, got)

	api.lookupErr = errors.New("usync timeout")
	_, err = client.ResolveNumber(context.Background(), "15550000001")
	assert.ErrorIs(t, err, api.lookupErr)
}

func TestClient_SendText(t *testing.T) {
	api := &fakeAPI{}
	client := &Client{api: api}

	require.NoError(t, client.SendText(context.Background(), "15550000001@s.whatsapp.net", "Hi Ann"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "Hi Ann", api.sent[0].GetConversation())
	assert.Equal(t, "15550000001", api.sentTo[0].User)

	api.sendErr = errors.New("not connected")
	assert.ErrorIs(t, client.SendText(context.Background(), "15550000001@s.whatsapp.net", "Hi"), api.sendErr)
}

func TestClient_SendMedia(t *testing.T) {
	api := &fakeAPI{}
	client := &Client{api: api}

	image := &domainCampaign.Media{FileName: "flyer.png", MimeType: "image/png", Data: pngImage(t, 300, 150)}
	require.NoError(t, client.SendMedia(context.Background(), "15550000001@s.whatsapp.net", image, "For Ann"))

	require.Len(t, api.sent, 1)
	msg := api.sent[0].GetImageMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "For Ann", msg.GetCaption())
	assert.NotEmpty(t, msg.GetJPEGThumbnail())
	assert.Equal(t, []whatsmeow.MediaType{whatsmeow.MediaImage}, api.uploads)

	doc := &domainCampaign.Media{FileName: "terms.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4")}
	require.NoError(t, client.SendMedia(context.Background(), "15550000001@s.whatsapp.net", doc, "Terms"))
	assert.Equal(t, "terms.pdf", api.sent[1].GetDocumentMessage().GetFileName())
}
