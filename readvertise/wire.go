/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise

import "github.com/named-data/yarib/table"

// Wire subscribes policy/announcer to rib's route observation hooks, so
// the readvertise policy reacts to local route additions/removals
// independently of the update-queue commit protocol, per spec.md §1.
func Wire(rib *table.Rib, policy *HostToGatewayPolicy, announcer Announcer) {
	rib.OnAfterAddRoute(func(ref table.RibRouteRef) {
		if action := policy.HandleNewRoute(ref); action != nil {
			announcer.Announce(*action)
		}
	})
	rib.OnBeforeRemoveRoute(func(ref table.RibRouteRef) {
		if action := policy.HandleNewRoute(ref); action != nil {
			announcer.Withdraw(action.Prefix)
		}
	})
}
