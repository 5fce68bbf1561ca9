/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package table implements the Routing Information Base: an in-memory,
// prefix-indexed tree of routes with child-inherit/capture inheritance
// semantics, a serialized update queue committed through an external FIB
// updater, and face-removal fan-out.
package table

import (
	"container/list"
	"fmt"
	"sort"
	"time"

	"github.com/cornelk/hashmap"
	"golang.org/x/exp/slices"

	"github.com/named-data/yarib/core"
	"github.com/named-data/yarib/ndn"
	"github.com/named-data/yarib/utils/priority_queue"
)

// defaultFaceIndexSize is the initial bucket count for the face index
// hashmap; the map grows automatically as entries are added.
const defaultFaceIndexSize = 16

// RibRouteRef is a reference to one route within one RibEntry, passed to
// the afterAddRoute/beforeRemoveRoute observation hooks.
type RibRouteRef struct {
	Entry *RibEntry
	Route *Route
}

// updateQueueItem bundles a batch with its caller-supplied callbacks.
type updateQueueItem struct {
	batch     RibUpdateBatch
	onSuccess func()
	onFailure func(code uint32, message string)
}

// expiringRoute is the value stored in the expirations priority queue.
type expiringRoute struct {
	name ndn.Name
	key  RouteKey
}

// Rib is the Routing Information Base described in spec.md §3-§4. All
// methods are intended to run on a single cooperative event-loop thread;
// Rib performs no internal locking (spec.md §5).
type Rib struct {
	entries   []*RibEntry // kept sorted by Name.Compare, so descendants of
	                       // any prefix form a contiguous run (spec.md §9).
	faceIndex *hashmap.HashMap
	nItems    uint64

	queue              *list.List // of *updateQueueItem
	isUpdateInProgress bool

	fibUpdater  FibUpdater
	expirations priority_queue.Queue[*expiringRoute, int64] // priority is deadline.UnixNano()

	afterInsertEntry  []func(name ndn.Name)
	afterAddRoute     []func(ref RibRouteRef)
	beforeRemoveRoute []func(ref RibRouteRef)
	afterEraseEntry   []func(name ndn.Name)
}

// NewRib constructs an empty Rib backed by the given FIB updater.
func NewRib(fibUpdater FibUpdater) *Rib {
	return &Rib{
		faceIndex:   hashmap.New(defaultFaceIndexSize),
		queue:       list.New(),
		fibUpdater:  fibUpdater,
		expirations: priority_queue.New[*expiringRoute, int64](),
	}
}

// Size returns the total number of routes across all entries.
func (r *Rib) Size() uint64 {
	return r.nItems
}

// SetFibUpdater (re)binds the FIB updater, for composition roots that need
// to construct a Rib and its InheritingFibUpdater in two steps because the
// updater itself holds a reference back to the Rib.
func (r *Rib) SetFibUpdater(fibUpdater FibUpdater) {
	r.fibUpdater = fibUpdater
}

// OnAfterInsertEntry subscribes fn to the afterInsertEntry signal.
func (r *Rib) OnAfterInsertEntry(fn func(name ndn.Name)) {
	r.afterInsertEntry = append(r.afterInsertEntry, fn)
}

// OnAfterAddRoute subscribes fn to the afterAddRoute signal.
func (r *Rib) OnAfterAddRoute(fn func(ref RibRouteRef)) {
	r.afterAddRoute = append(r.afterAddRoute, fn)
}

// OnBeforeRemoveRoute subscribes fn to the beforeRemoveRoute signal.
func (r *Rib) OnBeforeRemoveRoute(fn func(ref RibRouteRef)) {
	r.beforeRemoveRoute = append(r.beforeRemoveRoute, fn)
}

// OnAfterEraseEntry subscribes fn to the afterEraseEntry signal.
func (r *Rib) OnAfterEraseEntry(fn func(name ndn.Name)) {
	r.afterEraseEntry = append(r.afterEraseEntry, fn)
}

func (r *Rib) search(name ndn.Name) (int, bool) {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].name.Compare(name) >= 0
	})
	if i < len(r.entries) && r.entries[i].name.Compare(name) == 0 {
		return i, true
	}
	return i, false
}

// Find returns the RibEntry stored at prefix, or nil.
func (r *Rib) Find(prefix ndn.Name) *RibEntry {
	if i, ok := r.search(prefix); ok {
		return r.entries[i]
	}
	return nil
}

// FindRoute returns the route matching routeKey within the entry at
// prefix, or nil if the prefix or the route is absent.
func (r *Rib) FindRoute(prefix ndn.Name, routeKey RouteKey) *Route {
	entry := r.Find(prefix)
	if entry == nil {
		return nil
	}
	return entry.findRoute(routeKey)
}

// FindLongestPrefix returns the entry's own route if present; otherwise it
// looks one level up, at the immediate parent entry. It does not walk the
// full ancestor chain — see getAncestorRoutes for that.
func (r *Rib) FindLongestPrefix(prefix ndn.Name, routeKey RouteKey) *Route {
	if route := r.FindRoute(prefix, routeKey); route != nil {
		return route
	}
	if parent := r.FindParent(prefix); parent != nil {
		return parent.findRoute(routeKey)
	}
	return nil
}

// FindParent returns the entry for the longest proper prefix of prefix
// present in the table, or nil.
func (r *Rib) FindParent(prefix ndn.Name) *RibEntry {
	for i := prefix.Len() - 1; i >= 0; i-- {
		if e := r.Find(prefix.Prefix(i)); e != nil {
			return e
		}
	}
	return nil
}

// FindDescendants returns the entries whose name has prefix as a proper
// prefix, assuming prefix is itself present in the table. Because entries
// are kept sorted, descendants form a contiguous run immediately after
// prefix, making this an O(k) scan.
func (r *Rib) FindDescendants(prefix ndn.Name) []*RibEntry {
	i, ok := r.search(prefix)
	if !ok {
		return nil
	}
	var out []*RibEntry
	for j := i + 1; j < len(r.entries); j++ {
		if prefix.IsPrefixOf(r.entries[j].name) {
			out = append(out, r.entries[j])
		} else {
			break
		}
	}
	return out
}

// FindDescendantsForNonInsertedName linearly scans the table for entries
// with prefix as a proper prefix, for use when prefix is not itself
// present (so the contiguous-run trick of FindDescendants doesn't apply).
func (r *Rib) FindDescendantsForNonInsertedName(prefix ndn.Name) []*RibEntry {
	var out []*RibEntry
	for _, e := range r.entries {
		if prefix.IsPrefixOf(e.name) && !prefix.Equals(e.name) {
			out = append(out, e)
		}
	}
	return out
}

// insert adds or updates route at prefix, creating and re-parenting
// RibEntries as needed. This is the only place entries are created.
func (r *Rib) insert(prefix ndn.Name, route Route) {
	if entry := r.Find(prefix); entry != nil {
		stored, didInsert := entry.insertRoute(route)
		if didInsert {
			r.nItems++
			r.addFaceIndex(route.FaceID, entry)
			r.fireAfterAddRoute(RibRouteRef{Entry: entry, Route: stored})
		}
		return
	}

	entry := newRibEntry(r, prefix)
	stored, _ := entry.insertRoute(route)
	r.nItems++

	parent := r.FindParent(prefix)
	entry.parent = parent
	if parent != nil {
		parent.children[entry] = struct{}{}
	}

	for _, child := range r.FindDescendantsForNonInsertedName(prefix) {
		if child.parent == parent {
			if parent != nil {
				delete(parent.children, child)
			}
			entry.children[child] = struct{}{}
			child.parent = entry
		}
	}

	i, _ := r.search(prefix)
	r.entries = slices.Insert(r.entries, i, entry)

	r.addFaceIndex(route.FaceID, entry)

	r.fireAfterInsertEntry(prefix)
	r.fireAfterAddRoute(RibRouteRef{Entry: entry, Route: stored})
}

// erase removes the route identified by routeKey from prefix, pruning the
// entry (and firing afterEraseEntry) if it becomes empty. A missing
// prefix or route is a silent no-op, per spec.md §7.
func (r *Rib) erase(prefix ndn.Name, routeKey RouteKey) {
	entry := r.Find(prefix)
	if entry == nil {
		return
	}

	route := entry.findRoute(routeKey)
	if route == nil {
		return
	}

	r.fireBeforeRemoveRoute(RibRouteRef{Entry: entry, Route: route})

	faceID := route.FaceID
	entry.eraseRoute(routeKey)
	r.nItems--

	if !entry.HasFaceID(faceID) {
		r.removeFaceIndex(faceID, entry)
	}

	if entry.empty() {
		r.eraseEntry(entry)
	}
}

// eraseEntry removes entry from the table, adopting its children into its
// own parent's children set.
func (r *Rib) eraseEntry(entry *RibEntry) {
	i, ok := r.search(entry.name)
	if !ok {
		return
	}

	parent := entry.parent
	if parent != nil {
		delete(parent.children, entry)
	}
	for child := range entry.children {
		delete(entry.children, child)
		child.parent = parent
		if parent != nil {
			parent.children[child] = struct{}{}
		}
	}

	r.entries = slices.Delete(r.entries, i, i+1)

	r.fireAfterEraseEntry(entry.name)
}

// getAncestorRoutes returns the set of ancestor routes that apply to the
// given entry's name, per the child-inherit/capture rule of spec.md §4.2:
// walk parent pointers, collecting child-inherit routes, stopping
// (inclusive) at the first ancestor carrying the capture flag.
func (r *Rib) getAncestorRoutes(entry *RibEntry) []*Route {
	var out []*Route
	for parent := entry.parent; parent != nil; parent = parent.parent {
		for _, route := range parent.routes {
			if route.HasChildInherit() {
				out = append(out, route)
			}
		}
		if parent.HasCapture() {
			break
		}
	}
	return out
}

// getAncestorRoutesForName is the same computation for a name that may not
// itself have a table entry.
func (r *Rib) getAncestorRoutesForName(name ndn.Name) []*Route {
	var out []*Route
	for parent := r.FindParent(name); parent != nil; parent = parent.parent {
		for _, route := range parent.routes {
			if route.HasChildInherit() {
				out = append(out, route)
			}
		}
		if parent.HasCapture() {
			break
		}
	}
	return out
}

// modifyInheritedRoutes applies the FIB updater's inherited-route delta
// locally: REGISTER adds to the entry's inherited set, UNREGISTER removes
// it, REMOVE_FACE is a no-op (the originating route's own removal already
// accounts for it), per spec.md §4.2.
func (r *Rib) modifyInheritedRoutes(updates RibUpdateList) {
	for _, update := range updates {
		entry := r.Find(update.Name)
		if entry == nil {
			continue
		}
		switch update.Action {
		case ActionRegister:
			route := update.Route
			entry.addInheritedRoute(&route)
		case ActionUnregister:
			entry.removeInheritedRoute(update.Route.Key())
		case ActionRemoveFace:
			// no-op locally
		}
	}
}

// BeginApplyUpdate enqueues a single register/unregister update and drains
// the queue. onSuccess/onFailure are invoked once the FIB updater resolves
// this particular update's batch.
func (r *Rib) BeginApplyUpdate(update RibUpdate, onSuccess func(), onFailure func(code uint32, message string)) {
	r.addUpdateToQueue(update, onSuccess, onFailure)
	r.sendBatchFromQueue()
}

// BeginRemoveFace enqueues a REMOVE_FACE update for every route owned by
// faceID and drains the queue.
func (r *Rib) BeginRemoveFace(faceID uint64) {
	for entry := range r.faceEntries(faceID) {
		r.enqueueRemoveFace(entry, faceID)
	}
	r.sendBatchFromQueue()
}

// BeginRemoveFailedFaces enqueues REMOVE_FACE updates for every face not
// present in activeIDs, and drains the queue.
func (r *Rib) BeginRemoveFailedFaces(activeIDs map[uint64]struct{}) {
	for kv := range r.faceIndex.Iter() {
		faceID := kv.Key.(uint64)
		if _, ok := activeIDs[faceID]; ok {
			continue
		}
		set := kv.Value.(map[*RibEntry]struct{})
		for entry := range set {
			r.enqueueRemoveFace(entry, faceID)
		}
	}
	r.sendBatchFromQueue()
}

func (r *Rib) enqueueRemoveFace(entry *RibEntry, faceID uint64) {
	for _, route := range entry.routes {
		if route.FaceID != faceID {
			continue
		}
		r.addUpdateToQueue(RibUpdate{Action: ActionRemoveFace, Name: entry.name, Route: *route}, nil, nil)
	}
}

func (r *Rib) addUpdateToQueue(update RibUpdate, onSuccess func(), onFailure func(code uint32, message string)) {
	batch := RibUpdateBatch{FaceID: update.Route.FaceID, Updates: []RibUpdate{update}}
	r.queue.PushBack(&updateQueueItem{batch: batch, onSuccess: onSuccess, onFailure: onFailure})
}

// sendBatchFromQueue dispatches the head of the queue to the FIB updater,
// if none is already in flight. Idle --(queue non-empty)--> InFlight; the
// onOk/onErr handlers transition back to Idle and try to advance the
// queue again, per the state machine in spec.md §4.4.
func (r *Rib) sendBatchFromQueue() {
	if r.isUpdateInProgress || r.queue.Len() == 0 {
		return
	}

	r.isUpdateInProgress = true
	front := r.queue.Front()
	r.queue.Remove(front)
	item := front.Value.(*updateQueueItem)

	r.fibUpdater.ComputeAndSendFibUpdates(item.batch,
		func(inheritedRoutes RibUpdateList) { r.onFibUpdateSuccess(inheritedRoutes, item) },
		func(code uint32, message string) { r.onFibUpdateFailure(item.onFailure, code, message) },
	)
}

func (r *Rib) onFibUpdateSuccess(inheritedRoutes RibUpdateList, item *updateQueueItem) {
	for _, update := range item.batch.Updates {
		switch update.Action {
		case ActionRegister:
			r.insert(update.Name, update.Route)
		case ActionUnregister, ActionRemoveFace:
			r.erase(update.Name, update.Route.Key())
		}
	}

	r.modifyInheritedRoutes(inheritedRoutes)

	r.isUpdateInProgress = false
	if item.onSuccess != nil {
		item.onSuccess()
	}
	r.sendBatchFromQueue()
}

func (r *Rib) onFibUpdateFailure(onFailure func(code uint32, message string), code uint32, message string) {
	r.isUpdateInProgress = false
	if onFailure != nil {
		onFailure(code, message)
	}
	core.LogWarn("Rib", fmt.Sprintf("FIB update rejected code=%d message=%s", code, message))
	r.sendBatchFromQueue()
}

func (r *Rib) faceEntries(faceID uint64) map[*RibEntry]struct{} {
	if v, ok := r.faceIndex.Get(faceID); ok {
		return v.(map[*RibEntry]struct{})
	}
	return nil
}

func (r *Rib) addFaceIndex(faceID uint64, entry *RibEntry) {
	set := r.faceEntries(faceID)
	if set == nil {
		set = make(map[*RibEntry]struct{})
		r.faceIndex.Set(faceID, set)
	}
	set[entry] = struct{}{}
}

func (r *Rib) removeFaceIndex(faceID uint64, entry *RibEntry) {
	set := r.faceEntries(faceID)
	if set == nil {
		return
	}
	delete(set, entry)
	if len(set) == 0 {
		r.faceIndex.Del(faceID)
	}
}

func (r *Rib) cancelExpiration(tok *priority_queue.Token) {
	r.expirations.Remove(tok)
}

// ScheduleExpiration arranges for OnRouteExpiration to be invoked (via the
// queue, never directly mutating the tree) once the clock passes deadline.
// It cancels any previous expiration token on the same route.
func (r *Rib) ScheduleExpiration(prefix ndn.Name, routeKey RouteKey, deadline time.Time) {
	entry := r.Find(prefix)
	if entry == nil {
		return
	}
	route := entry.findRoute(routeKey)
	if route == nil {
		return
	}
	if route.expirationToken != nil {
		r.cancelExpiration(route.expirationToken)
	}
	route.expirationToken = r.expirations.Push(&expiringRoute{name: prefix, key: routeKey}, deadline.UnixNano())
}

// PollExpirations pops and applies every expiration whose deadline is at or
// before now, enqueuing an UNREGISTER for each. Expiration never mutates
// the tree directly, per spec.md §4.1.
func (r *Rib) PollExpirations(now time.Time) {
	nowNano := now.UnixNano()
	for r.expirations.Len() > 0 && r.expirations.PeekPriority() <= nowNano {
		exp := r.expirations.Pop()
		r.OnRouteExpiration(exp.name, exp.key)
	}
}

// OnRouteExpiration enqueues an UNREGISTER for (prefix, routeKey) and
// drains the queue. If the route is already gone (an expiration race with
// an explicit unregister), it is a silent no-op.
func (r *Rib) OnRouteExpiration(prefix ndn.Name, routeKey RouteKey) {
	route := r.FindRoute(prefix, routeKey)
	if route == nil {
		return
	}
	r.BeginApplyUpdate(RibUpdate{Action: ActionUnregister, Name: prefix, Route: *route}, nil, nil)
}

func (r *Rib) fireAfterInsertEntry(name ndn.Name) {
	for _, fn := range r.afterInsertEntry {
		fn(name)
	}
}

func (r *Rib) fireAfterAddRoute(ref RibRouteRef) {
	for _, fn := range r.afterAddRoute {
		fn(ref)
	}
}

func (r *Rib) fireBeforeRemoveRoute(ref RibRouteRef) {
	for _, fn := range r.beforeRemoveRoute {
		fn(ref)
	}
}

func (r *Rib) fireAfterEraseEntry(name ndn.Name) {
	for _, fn := range r.afterEraseEntry {
		fn(name)
	}
}
