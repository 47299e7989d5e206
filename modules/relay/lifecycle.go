package relay

import (
	domain "github.com/example/presence-relay/domain/relay"
)

// Connect runs the connect half of the session lifecycle: register the
// identity (when one was supplied), announce the user coming online on their
// first session, and join the per-user mailbox room so directed messages
// reach this session regardless of which conversation rooms it joins later.
func (r *Router) Connect(sess domain.Session) {
	if sess.Anonymous() {
		r.logger.Debug("Anonymous session connected", "sessionID", sess.ID)
		return
	}

	if r.registry.Register(sess.UserID, sess.ID) {
		r.announce.UserOnline(sess.UserID)
	}
	r.roster.Join(domain.MailboxRoom(sess.UserID), sess.ID)

	r.logger.Info("Session connected", "sessionID", sess.ID, "userID", sess.UserID)
}

// Disconnect runs the teardown half of the lifecycle. It is the single place
// every growable structure shrinks from: the registry entry, every room
// membership, the location display-name side-table and any pending typing
// timers. After it returns, nothing in the relay references the session.
func (r *Router) Disconnect(sess domain.Session) {
	if !sess.Anonymous() {
		if r.registry.Unregister(sess.UserID, sess.ID) {
			r.announce.UserOffline(sess.UserID)
			// Synchronous, so no stray timer fires for a user with no
			// sessions left.
			r.typing.ClearUser(sess.UserID)
		}
	}

	for _, room := range r.roster.RoomsOf(sess.ID) {
		if room.Kind == domain.RoomLocation {
			r.location.RemoveMember(room.Key, sess.MemberID(), sess.ID)
			continue
		}
		r.roster.Leave(room, sess.ID)
	}

	r.logger.Info("Session disconnected", "sessionID", sess.ID, "userID", sess.UserID)
}
