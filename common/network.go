/*
 * RTM - The transaction manifest language and resource engine
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"fmt"
)

// Network identifies the ledger a manifest is written for.
// Its HRP suffix is part of every human-readable address.
type Network struct {
	Name      string
	HRPSuffix string
}

var (
	SimulatorNetwork = Network{Name: "simulator", HRPSuffix: "sim"}
	LocalNetwork     = Network{Name: "localnet", HRPSuffix: "loc"}
	MainNetwork      = Network{Name: "mainnet", HRPSuffix: "rdx"}
)

var networks = []Network{
	SimulatorNetwork,
	LocalNetwork,
	MainNetwork,
}

// NetworkByName returns the well-known network with the given name.
func NetworkByName(name string) (Network, error) {
	for _, network := range networks {
		if network.Name == name {
			return network, nil
		}
	}
	return Network{}, fmt.Errorf("unknown network: %q", name)
}

func (n Network) String() string {
	return n.Name
}
