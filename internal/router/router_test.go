package router_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commander/internal/ipc"
	"commander/internal/router"
	"commander/internal/router/mocks"
)

type handlers struct {
	files    *mocks.MockFileAssociationHandler
	shorts   *mocks.MockShortcutHandler
	menus    *mocks.MockContextMenuHandler
	protos   *mocks.MockProtocolHandler
	dispatch *router.Router
}

func newHandlers(t *testing.T) handlers {
	ctrl := gomock.NewController(t)
	h := handlers{
		files:  mocks.NewMockFileAssociationHandler(ctrl),
		shorts: mocks.NewMockShortcutHandler(ctrl),
		menus:  mocks.NewMockContextMenuHandler(ctrl),
		protos: mocks.NewMockProtocolHandler(ctrl),
	}
	h.dispatch = router.New(router.Handlers{
		FileAssociations: h.files,
		Shortcuts:        h.shorts,
		ContextMenus:     h.menus,
		Protocols:        h.protos,
	})
	return h
}

func cmd(name string, kv ...string) ipc.Command {
	props := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		props[kv[i]] = kv[i+1]
	}
	return ipc.Command{Name: name, Properties: props}
}

func TestDispatchRoutesEachKind(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()

	h.files.EXPECT().ExecuteAssociation(gomock.Any(), "/home/u/a.log")
	h.shorts.EXPECT().ExecuteShortcut(gomock.Any(), 3)
	h.menus.EXPECT().ExecuteMenuItem(gomock.Any(), 5, "/home/u/b.txt")
	h.protos.EXPECT().ExecuteProtocol(gomock.Any(), "cmdr", "cmdr://run/")

	require.NoError(t, h.dispatch.Dispatch(ctx, cmd("fileAssociation", "filePath", "/home/u/a.log")))
	require.NoError(t, h.dispatch.Dispatch(ctx, cmd("shortcut", "id", "3")))
	require.NoError(t, h.dispatch.Dispatch(ctx, cmd("contextMenu", "id", "5", "path", "/home/u/b.txt")))
	require.NoError(t, h.dispatch.Dispatch(ctx, cmd("protocol", "protocol", "cmdr", "arg", "cmdr://run/")))
}

func TestDispatchIgnoresIncompleteAndUnknown(t *testing.T) {
	// No EXPECT calls: any handler call fails the test.
	h := newHandlers(t)
	ctx := context.Background()

	cases := []ipc.Command{
		cmd("fileAssociation"),
		cmd("shortcut"),
		cmd("contextMenu", "id", "5"),
		cmd("contextMenu", "path", "/x"),
		cmd("protocol", "protocol", "cmdr"),
		cmd("protocol", "arg", "x"),
		cmd("launchRockets", "id", "1"),
		{Name: "shortcut"},
	}
	for _, c := range cases {
		assert.NoError(t, h.dispatch.Dispatch(ctx, c), c.Name)
	}
}

func TestDispatchMalformedID(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()

	err := h.dispatch.Dispatch(ctx, cmd("shortcut", "id", "three"))
	assert.ErrorIs(t, err, router.ErrMalformed)

	err = h.dispatch.Dispatch(ctx, cmd("contextMenu", "id", "x", "path", "/p"))
	assert.ErrorIs(t, err, router.ErrMalformed)
}

func TestDispatchWireRoundTrip(t *testing.T) {
	h := newHandlers(t)
	h.shorts.EXPECT().ExecuteShortcut(gomock.Any(), 3).Times(2)

	direct := cmd("shortcut", "id", "3")
	payload, err := ipc.EncodeCommand(direct)
	require.NoError(t, err)
	decoded, err := ipc.DecodeCommand(payload)
	require.NoError(t, err)

	require.NoError(t, h.dispatch.Dispatch(context.Background(), direct))
	require.NoError(t, h.dispatch.Dispatch(context.Background(), decoded))
}

func TestNilHandlersAreNoops(t *testing.T) {
	t.Parallel()
	r := router.New(router.Handlers{})
	assert.NoError(t, r.Dispatch(context.Background(), cmd("shortcut", "id", "1")))
	assert.NoError(t, r.Dispatch(context.Background(), cmd("fileAssociation", "filePath", "/x")))
}
