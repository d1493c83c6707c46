package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
	"github.com/kivanctezoren/sanalkiwobot/internal/covid"
	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/internal/intent"
	"github.com/kivanctezoren/sanalkiwobot/internal/location"
	"github.com/kivanctezoren/sanalkiwobot/internal/middleware"
	"github.com/kivanctezoren/sanalkiwobot/internal/models"
	"github.com/kivanctezoren/sanalkiwobot/internal/registry"
	"github.com/kivanctezoren/sanalkiwobot/internal/state"
	"github.com/kivanctezoren/sanalkiwobot/internal/text"
	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
)

const (
	testBotID     = int64(999)
	adminUserID   = int64(7)
	adminGroupID  = int64(-500)
	recipientID   = int64(11)
	optedOutID    = int64(22)
	plainUserID   = int64(42)
	privateChatID = int64(7)
)

type sent struct {
	chatID   int64
	text     string
	replyTo  int
	markdown bool
}

type deleted struct {
	chatID    int64
	messageID int
}

// mockSender records all outbound traffic in order.
type mockSender struct {
	mu       sync.Mutex
	sent     []sent
	deleted  []deleted
	docs     []string
	actions  []string
	nextID   int
	sendErrs map[int64]error
	delErrs  map[int64]error
}

func newMockSender() *mockSender {
	return &mockSender{nextID: 100, sendErrs: map[int64]error{}, delErrs: map[int64]error{}}
}

func (m *mockSender) record(chatID int64, txt string, replyTo int, md bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.sendErrs[chatID]; err != nil {
		return 0, err
	}
	m.nextID++
	m.sent = append(m.sent, sent{chatID: chatID, text: txt, replyTo: replyTo, markdown: md})
	return m.nextID, nil
}

func (m *mockSender) Send(ctx context.Context, chatID int64, txt string) (int, error) {
	return m.record(chatID, txt, 0, false)
}

func (m *mockSender) SendMarkdown(ctx context.Context, chatID int64, md string) (int, error) {
	return m.record(chatID, md, 0, true)
}

func (m *mockSender) Reply(ctx context.Context, chatID int64, replyTo int, txt string) (int, error) {
	return m.record(chatID, txt, replyTo, false)
}

func (m *mockSender) Delete(ctx context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.delErrs[chatID]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, deleted{chatID: chatID, messageID: messageID})
	return nil
}

func (m *mockSender) ChatAction(ctx context.Context, chatID int64, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

func (m *mockSender) SendDocument(ctx context.Context, chatID int64, name string, r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, fmt.Sprintf("%d:%s", chatID, name))
	return nil
}

// sentTo returns the texts sent to one chat, in order.
func (m *mockSender) sentTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		if s.chatID == chatID {
			out = append(out, s.text)
		}
	}
	return out
}

// stubCovid serves a fixed result and records requested locations.
type stubCovid struct {
	stats models.Stats
	date  time.Time
	err   error
	calls []string
}

func (s *stubCovid) Lookup(ctx context.Context, loc string, at time.Time) (models.LookupResult, error) {
	s.calls = append(s.calls, loc)
	if s.err != nil {
		return models.LookupResult{}, s.err
	}
	return models.LookupResult{Location: loc, Stats: s.stats, Date: s.date}, nil
}

func testCategories() *wordset.Categories {
	return &wordset.Categories{
		Greet:   text.NewSet("selam", "selamlar", "merhabalar"),
		WhatsUp: text.NewSet("naber", "nabersiniz"),
		Group:   text.NewSet("arkadaşlar"),
		Bot:     text.NewSet("kiwo"),
		Corona:  text.NewSet("korona", "corona"),
		Request: text.NewSet("naptı", "durumu", "nedir"),
	}
}

func testLocationTable() *location.Table {
	return location.NewTable([]wordset.Pair{
		{Key: "türkiye", Value: "Turkey"},
		{Key: "abd", Value: "US"},
		{Key: "almanya", Value: "Germany"},
		{Key: "ingiltere", Value: "United Kingdom"},
	})
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func newTestHandler(t *testing.T) (*Handler, *mockSender, *stubCovid) {
	t.Helper()

	tmp := t.TempDir()
	listDir := filepath.Join(tmp, "text_lists")
	msgDir := filepath.Join(tmp, "msg_texts")
	chatDataDir := filepath.Join(tmp, "chat_data")

	writeFiles(t, listDir, map[string]string{
		"list_whatsup_reply.txt": "iyidir senden naber\n",
		"list_corona.txt":        "maskeni tak\n",
	})
	writeFiles(t, msgDir, map[string]string{
		"msg_start.md": "selamlar, ben kiwo",
		"msg_help.md":  "yapabildiklerim şunlar",
	})
	writeFiles(t, chatDataDir, map[string]string{
		"chats.txt":       fmt.Sprintf("%d\n%d\n", recipientID, optedOutID),
		"admin_chats.txt": fmt.Sprintf("%d\n%d\n", adminUserID, adminGroupID),
		"annc_blist.txt":  fmt.Sprintf("%d\n", optedOutID),
	})

	cfg := &config.Config{}
	cfg.Covid.FallbackLocation = "Turkey"
	cfg.Registry.Type = "file"
	cfg.Registry.Dir = chatDataDir
	cfg.Resources.TextListDir = listDir
	cfg.Resources.MsgTextDir = msgDir
	cfg.Resources.ChatDataDir = chatDataDir
	cfg.I18n.DefaultLanguage = "tr"
	cfg.I18n.Languages = []string{"tr"}
	cfg.I18n.Dir = filepath.Join("..", "..", "configs", "i18n")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reg, err := registry.NewManager(&cfg.Registry, logger)
	require.NoError(t, err)

	localizer, err := i18n.NewLocalizer(&cfg.I18n)
	require.NoError(t, err)

	table := testLocationTable()
	engine := &stubCovid{
		stats: models.Stats{Confirmed: 100, Active: 20, Deaths: 5, Recovered: 75},
		date:  time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	snd := newMockSender()

	h, err := NewHandler(
		cfg,
		snd,
		intent.NewClassifier(testCategories()),
		location.NewResolver(table, nil, cfg.Covid.FallbackLocation),
		table,
		engine,
		state.NewStore(),
		reg,
		localizer,
		middleware.NewMetrics(),
		logger,
		testBotID,
	)
	require.NoError(t, err)

	return h, snd, engine
}

func chatOfType(id int64, typ string) *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: id, Type: typ}
}

func textMessage(chat *tgbotapi.Chat, userID int64, txt string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, FirstName: "Deniz"},
		Date:      int(time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC).Unix()),
		Chat:      chat,
		Text:      txt,
	}
}

func commandMessage(chat *tgbotapi.Chat, userID int64, txt string) *tgbotapi.Message {
	msg := textMessage(chat, userID, txt)
	cmdLen := len(txt)
	if i := strings.IndexByte(txt, ' '); i >= 0 {
		cmdLen = i
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return msg
}

func privateMessage(userID int64, txt string) *tgbotapi.Message {
	return textMessage(chatOfType(userID, "private"), userID, txt)
}

func TestGreetingReply(t *testing.T) {
	h, snd, _ := newTestHandler(t)

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "Selam!")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 1)
	assert.Equal(t, "selam deniz", got[0])
}

func TestGreetingEasterEgg(t *testing.T) {
	h, snd, _ := newTestHandler(t)

	msg := privateMessage(plainUserID, "selam")
	msg.From.UserName = "kivanct"
	require.NoError(t, h.HandleMessage(context.Background(), msg))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 1)
	assert.Equal(t, "selam reel kiwo", got[0])
}

func TestGroupMessageNotAddressed(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	group := chatOfType(-42, "group")

	// A personal greeting without any address word is none of the bot's
	// business in a group.
	require.NoError(t, h.HandleMessage(context.Background(), textMessage(group, plainUserID, "selam")))
	assert.Empty(t, snd.sent)

	// The unmistakable group-wide greeting is answered.
	require.NoError(t, h.HandleMessage(context.Background(), textMessage(group, plainUserID, "selamlar")))
	assert.Len(t, snd.sentTo(-42), 1)
}

func TestGroupAddressWordTriggers(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	group := chatOfType(-42, "group")

	require.NoError(t, h.HandleMessage(context.Background(), textMessage(group, plainUserID, "kiwo naber")))

	got := snd.sentTo(-42)
	require.Len(t, got, 1)
	assert.Equal(t, "iyidir senden naber", got[0])
}

func TestStatsRequestResolvesLocation(t *testing.T) {
	h, snd, engine := newTestHandler(t)

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona almanyada durumu nedir")))

	assert.Equal(t, []string{"Germany"}, engine.calls)

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 2)
	assert.Equal(t, "hemen bakıyorum...", got[0])
	assert.Contains(t, got[1], "14.03.2021 itibariyle almanya'da toplam 100 resmi vaka olmuş.")
	assert.Contains(t, got[1], "20 tanesi aktif")
	assert.Contains(t, got[1], "5 tanesi hayatını kaybetmiş, 75 tanesi iyileşmiş")
	assert.Contains(t, got[1], "maskeni tak")
}

func TestStatsRequestDefaultsToFallback(t *testing.T) {
	h, _, engine := newTestHandler(t)

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona durumu")))

	assert.Equal(t, []string{"Turkey"}, engine.calls)
}

func TestStatsRequestUnknownWordsStillServed(t *testing.T) {
	h, snd, engine := newTestHandler(t)

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona almanya zzgarip")))

	// The warning goes out but the recognized location is still served.
	got := snd.sentTo(plainUserID)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "tanıyamadığım kelimeler var")
	assert.Equal(t, []string{"Germany"}, engine.calls)
}

func TestStatsRequestUnknownWordsOnly(t *testing.T) {
	h, snd, engine := newTestHandler(t)

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona zzgarip")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "tanıyamadığım kelimeler var")
	assert.Empty(t, engine.calls)
}

func TestStatsRequestNeedsRequestMarkerInGroups(t *testing.T) {
	h, _, engine := newTestHandler(t)
	group := chatOfType(-42, "group")

	// Addressed but without a request marker: no lookup.
	require.NoError(t, h.HandleMessage(context.Background(), textMessage(group, plainUserID, "kiwo korona")))
	assert.Empty(t, engine.calls)

	require.NoError(t, h.HandleMessage(context.Background(), textMessage(group, plainUserID, "kiwo korona nedir")))
	assert.Equal(t, []string{"Turkey"}, engine.calls)
}

func TestZeroRecoveredCaveat(t *testing.T) {
	h, snd, engine := newTestHandler(t)
	engine.stats = models.Stats{Confirmed: 25, Active: 20, Deaths: 5, Recovered: 0}

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona durumu")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "0 iyileşen kötüymüş be")
}

func TestInconsistentStatsNotice(t *testing.T) {
	h, snd, engine := newTestHandler(t)
	engine.stats = models.Stats{Confirmed: 100, Active: 10, Deaths: 5, Recovered: 75}

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona türkiyede durumu")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 3)
	assert.Contains(t, got[2], "sayıları tutmuyor")
	assert.Contains(t, got[2], "türkiye")

	admin := snd.sentTo(adminGroupID)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0], "Turkey")
}

func TestUnitedKingdomLocative(t *testing.T) {
	h, snd, _ := newTestHandler(t)

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona ingilterede durumu")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "birleşik krallık'ta")
}

func TestCoronaCommandWithAlias(t *testing.T) {
	h, _, engine := newTestHandler(t)
	chat := chatOfType(privateChatID, "private")

	require.NoError(t, h.HandleCommand(context.Background(), commandMessage(chat, plainUserID, "/corona abd")))
	assert.Equal(t, []string{"US"}, engine.calls)
}

func TestCoronaCommandUnknownArgument(t *testing.T) {
	h, snd, engine := newTestHandler(t)
	chat := chatOfType(privateChatID, "private")

	require.NoError(t, h.HandleCommand(context.Background(), commandMessage(chat, plainUserID, "/corona atlantis")))

	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "ülke adını (henüz) bilmiyorum")
	assert.Empty(t, engine.calls)
}

func TestCoronaSourceUnavailable(t *testing.T) {
	h, snd, engine := newTestHandler(t)
	engine.err = covid.ErrSourceUnavailable

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona durumu")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "5 gündür güncellemiyorlar")
}

func TestCoronaCorruptDataset(t *testing.T) {
	h, snd, engine := newTestHandler(t)
	engine.err = covid.ErrCorruptDataset

	require.NoError(t, h.HandleMessage(context.Background(), privateMessage(plainUserID, "korona durumu")))

	got := snd.sentTo(plainUserID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "veritabanını okuyamıyorum")

	// Operators are told too, admin groups only.
	assert.Len(t, snd.sentTo(adminGroupID), 1)
	assert.Empty(t, snd.sentTo(adminUserID))
}

func TestAnnounceRequiresAdmin(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	chat := chatOfType(privateChatID, "private")

	require.NoError(t, h.HandleCommand(context.Background(), commandMessage(chat, plainUserID, "/duyur")))

	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "yalnızca adminler duyuru yapabilir")
	_, ok := h.states.State(privateChatID)
	assert.False(t, ok)
}

func TestAnnounceFlow(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	// /duyur arms the flow.
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/duyur")))
	st, ok := h.states.State(privateChatID)
	require.True(t, ok)
	assert.Equal(t, state.AnnounceLv1, st)

	// The next message is captured as the draft and echoed back.
	require.NoError(t, h.HandleMessage(ctx, textMessage(chat, adminUserID, "yarın buluşma var")))
	st, _ = h.states.State(privateChatID)
	assert.Equal(t, state.AnnounceLv2, st)
	draft, ok := h.states.Draft(privateChatID)
	require.True(t, ok)
	assert.Equal(t, "yarın buluşma var", draft)

	// Rejection returns to the capture step.
	require.NoError(t, h.HandleMessage(ctx, textMessage(chat, adminUserID, "Hayır")))
	st, _ = h.states.State(privateChatID)
	assert.Equal(t, state.AnnounceLv1, st)

	// New draft, then a nonsense answer, then confirmation.
	require.NoError(t, h.HandleMessage(ctx, textMessage(chat, adminUserID, "toplantı iptal")))
	require.NoError(t, h.HandleMessage(ctx, textMessage(chat, adminUserID, "belki")))
	got := snd.sentTo(privateChatID)
	assert.Contains(t, got[len(got)-1], `lütfen "evet" veya "hayır"`)

	require.NoError(t, h.HandleMessage(ctx, textMessage(chat, adminUserID, "Evet")))

	// Only the non-opted-out chat received the broadcast.
	delivered := snd.sentTo(recipientID)
	require.Len(t, delivered, 1)
	assert.Equal(t, "toplantı iptal", delivered[0])
	assert.Empty(t, snd.sentTo(optedOutID))

	// Flow is fully unwound.
	_, ok = h.states.State(privateChatID)
	assert.False(t, ok)
	_, ok = h.states.Draft(privateChatID)
	assert.False(t, ok)

	record := h.states.LastBroadcast()
	require.Len(t, record, 1)
	assert.Contains(t, record, recipientID)

	// Admin groups were notified of the broadcast start.
	admin := snd.sentTo(adminGroupID)
	require.NotEmpty(t, admin)
	assert.Contains(t, admin[0], "duyuru")
}

func TestAnnounceConflict(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/duyur")))
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/duyur")))

	got := snd.sentTo(privateChatID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "yarım kalan bir duyuru işi var")
}

func TestAnnounceStateIgnoresNonAdminMessages(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	group := chatOfType(-42, "group")

	h.states.SetState(-42, state.AnnounceLv1)

	require.NoError(t, h.HandleMessage(ctx, textMessage(group, plainUserID, "ben de duyuru yapayım")))

	got := snd.sentTo(-42)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "yalnız adminler duyuru yollayabilir")

	// The state stays armed, waiting for an admin message.
	st, _ := h.states.State(-42)
	assert.Equal(t, state.AnnounceLv1, st)
	_, ok := h.states.Draft(-42)
	assert.False(t, ok)
}

func TestUnknownStateRecovered(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	h.states.SetState(privateChatID, "greet_lv9")

	require.NoError(t, h.HandleMessage(ctx, textMessage(chat, plainUserID, "merhaba")))

	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "ne olduğunu tam çıkaramıyorum")

	_, ok := h.states.State(privateChatID)
	assert.False(t, ok)

	admin := snd.sentTo(adminGroupID)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0], "greet_lv9")
}

func TestAbort(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	// Nothing armed yet.
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/iptal")))
	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "iptal edilecek bir şey yok")

	// Armed flow, non-admin cannot abort it.
	h.states.SetState(privateChatID, state.AnnounceLv2)
	h.states.SetDraft(privateChatID, "taslak")
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, plainUserID, "/iptal")))
	st, _ := h.states.State(privateChatID)
	assert.Equal(t, state.AnnounceLv2, st)

	// Admin abort clears state and draft.
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/iptal")))
	_, ok := h.states.State(privateChatID)
	assert.False(t, ok)
	_, ok = h.states.Draft(privateChatID)
	assert.False(t, ok)
}

func TestRevokeAnnouncement(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	// Nothing to revoke yet.
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/duyurusil")))
	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "listesi boş")

	h.states.SetLastBroadcast(models.BroadcastRecord{recipientID: 123, optedOutID: 124})

	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/duyurusil")))
	assert.ElementsMatch(t, []deleted{
		{chatID: recipientID, messageID: 123},
		{chatID: optedOutID, messageID: 124},
	}, snd.deleted)

	got = snd.sentTo(privateChatID)
	require.Len(t, got, 3)
	assert.Contains(t, got[2], "başarıyla silindi")

	// The record is spent either way.
	assert.Empty(t, h.states.LastBroadcast())
}

func TestRevokePartialFailure(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	snd.delErrs[optedOutID] = fmt.Errorf("message to delete not found")
	h.states.SetLastBroadcast(models.BroadcastRecord{recipientID: 123, optedOutID: 124})

	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, adminUserID, "/duyurusil")))

	got := snd.sentTo(privateChatID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "bir veya daha fazla alıcıdan başarıyla silinemedi")

	admin := snd.sentTo(adminGroupID)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0], "silinemedi")
}

func TestSubscriptionToggle(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, plainUserID, "/abonelik")))
	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "duyuru listesinden çıkardım")

	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, plainUserID, "/abonelik")))
	got = snd.sentTo(privateChatID)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "duyuru listesine ekledim")

	// Toggling backs up the chat data to admin groups.
	require.NotEmpty(t, snd.docs)
	assert.True(t, strings.HasPrefix(snd.docs[0], fmt.Sprintf("%d:chat_data_", adminGroupID)))
}

func TestStartRegistersChat(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, plainUserID, "/start")))

	known, err := h.registry.Chats().Contains(ctx, privateChatID)
	require.NoError(t, err)
	assert.True(t, known)

	got := snd.sentTo(privateChatID)
	require.Len(t, got, 1)
	assert.Equal(t, "selamlar, ben kiwo", got[0])

	// A second /start does not back up again.
	docs := len(snd.docs)
	require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, plainUserID, "/start")))
	assert.Len(t, snd.docs, docs)
}

func TestBackupCommandAdminChatsOnly(t *testing.T) {
	h, snd, _ := newTestHandler(t)
	ctx := context.Background()

	plainChat := chatOfType(int64(42), "private")
	require.NoError(t, h.HandleCommand(ctx, commandMessage(plainChat, plainUserID, "/db_backup")))
	got := snd.sentTo(42)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "yalnızca admin chatlerde")
	assert.Empty(t, snd.docs)

	adminChat := chatOfType(adminUserID, "private")
	require.NoError(t, h.HandleCommand(ctx, commandMessage(adminChat, adminUserID, "/db_backup")))
	require.Len(t, snd.docs, 1)
	assert.True(t, strings.HasPrefix(snd.docs[0], fmt.Sprintf("%d:chat_data_", adminUserID)))
}

func TestCommandAliases(t *testing.T) {
	h, _, engine := newTestHandler(t)
	ctx := context.Background()
	chat := chatOfType(privateChatID, "private")

	for _, alias := range []string{"/corona", "/covid", "/covid19", "/korona"} {
		require.NoError(t, h.HandleCommand(ctx, commandMessage(chat, plainUserID, alias)))
	}
	assert.Len(t, engine.calls, 4)
}
