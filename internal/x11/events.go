package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"gamewrap/internal/focus"
	"gamewrap/internal/picker"
	"gamewrap/internal/wm"
)

// SubscribeFocus asks the server for focus-change and structure events on
// each window. Structure events are needed to notice window destruction.
func (d *Display) SubscribeFocus(wins ...wm.Window) error {
	const eventMask = xproto.EventMaskFocusChange | xproto.EventMaskStructureNotify
	for _, win := range wins {
		if err := xproto.ChangeWindowAttributesChecked(
			d.conn,
			xproto.Window(win),
			xproto.CwEventMask,
			[]uint32{eventMask},
		).Check(); err != nil {
			return fmt.Errorf("failed to set event mask on 0x%x: %w", uint32(win), err)
		}
	}
	return nil
}

// WaitFocus blocks until the next focus-change or destroy notification,
// discarding unrelated events.
func (d *Display) WaitFocus() (focus.Notify, error) {
	for {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return focus.Notify{}, fmt.Errorf("X connection closed")
		}
		if xerr != nil {
			// per-window errors (window vanished between events) are not
			// fatal to the monitor
			continue
		}
		switch e := ev.(type) {
		case xproto.FocusInEvent:
			return focus.Notify{
				Window: wm.Window(e.Event),
				Gained: true,
				Mode:   focus.Mode(e.Mode),
				Detail: focus.Detail(e.Detail),
			}, nil
		case xproto.FocusOutEvent:
			return focus.Notify{
				Window: wm.Window(e.Event),
				Gained: false,
				Mode:   focus.Mode(e.Mode),
				Detail: focus.Detail(e.Detail),
			}, nil
		case xproto.DestroyNotifyEvent:
			return focus.Notify{
				Window:    wm.Window(e.Window),
				Destroyed: true,
			}, nil
		}
	}
}

// GrabPointer grabs the pointer exclusively on the root window for button
// press and release events.
func (d *Display) GrabPointer(root wm.Window) error {
	const eventMask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease
	reply, err := xproto.GrabPointer(
		d.conn,
		false,
		xproto.Window(root),
		uint16(eventMask),
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		return fmt.Errorf("failed to grab pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("pointer grab refused (status=%d)", reply.Status)
	}
	return nil
}

// UngrabPointer releases a pointer grab.
func (d *Display) UngrabPointer() {
	xproto.UngrabPointer(d.conn, xproto.TimeCurrentTime)
}

// NextButton blocks until the next pointer-button event.
func (d *Display) NextButton() (picker.Button, error) {
	for {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return picker.Button{}, fmt.Errorf("X connection closed")
		}
		if xerr != nil {
			continue
		}
		switch e := ev.(type) {
		case xproto.ButtonPressEvent:
			return picker.Button{
				Press:   true,
				Primary: e.Detail == 1,
				Window:  wm.Window(e.Child),
			}, nil
		case xproto.ButtonReleaseEvent:
			return picker.Button{
				Primary: e.Detail == 1,
				Window:  wm.Window(e.Child),
			}, nil
		}
	}
}

// PointerChild returns the child of win directly under the pointer.
func (d *Display) PointerChild(win wm.Window) (wm.Window, error) {
	reply, err := xproto.QueryPointer(d.conn, xproto.Window(win)).Reply()
	if err != nil {
		return wm.None, err
	}
	return wm.Window(reply.Child), nil
}
