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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/tidwall/pretty"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/interpreter"
)

type flowJSON struct {
	Put   string `json:"put"`
	Taken string `json:"taken"`
}

type errorJSON struct {
	Index   int    `json:"index"`
	Opcode  string `json:"opcode,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type receiptJSON struct {
	Status          string              `json:"status"`
	TransactionHash string              `json:"transaction_hash"`
	Outputs         []string            `json:"outputs"`
	LockedFee       string              `json:"locked_fee"`
	Flows           map[string]flowJSON `json:"flows,omitempty"`
	Created         []string            `json:"created,omitempty"`
	Error           *errorJSON          `json:"error,omitempty"`
}

func newReceiptJSON(receipt *interpreter.Receipt, codec common.AddressCodec) receiptJSON {
	result := receiptJSON{
		Status:          receipt.Status.String(),
		TransactionHash: receipt.TransactionHash.Hex(),
		Outputs:         make([]string, len(receipt.Outputs)),
		LockedFee:       receipt.LockedFee.String(),
	}

	for i, output := range receipt.Outputs {
		if output == nil {
			continue
		}
		result.Outputs[i] = output.Literal(codec)
	}

	if len(receipt.Flows) > 0 {
		result.Flows = make(map[string]flowJSON, len(receipt.Flows))
		for address, flow := range receipt.Flows {
			result.Flows[codec.MustEncode(common.Address(address))] = flowJSON{
				Put:   flow.Put.String(),
				Taken: flow.Taken.String(),
			}
		}
	}

	if receipt.Delta != nil {
		for _, address := range receipt.Delta.Created {
			result.Created = append(result.Created, codec.MustEncode(address))
		}
	}

	if receipt.Error != nil {
		result.Error = &errorJSON{
			Index:   receipt.Error.Index,
			Kind:    errors.KindOf(receipt.Error).String(),
			Message: receipt.Error.Err.Error(),
		}
		if receipt.Error.Opcode != ast.OpcodeUnknown {
			result.Error.Opcode = receipt.Error.Opcode.String()
		}
	}

	return result
}

func printReceiptJSON(w io.Writer, receipt *interpreter.Receipt, codec common.AddressCodec, colored bool) error {
	encoded, err := json.Marshal(newReceiptJSON(receipt, codec))
	if err != nil {
		return err
	}

	encoded = pretty.Pretty(encoded)
	if colored {
		encoded = pretty.Color(encoded, pretty.TerminalStyle)
	}

	_, err = w.Write(encoded)
	return err
}

func printReceipt(w io.Writer, receipt *interpreter.Receipt, codec common.AddressCodec, colored bool) {
	result := newReceiptJSON(receipt, codec)

	fmt.Fprintf(w, "%s %s\n",
		colorizeLabel("status:", colored),
		colorizeStatus(receipt.IsCommitted(), result.Status, colored),
	)
	fmt.Fprintf(w, "%s %s\n", colorizeLabel("transaction:", colored), result.TransactionHash)

	if !receipt.LockedFee.IsZero() {
		fmt.Fprintf(w, "%s %s\n", colorizeLabel("locked fee:", colored), result.LockedFee)
	}

	for i, output := range result.Outputs {
		if output == "" || output == "()" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n",
			colorizeLabel(fmt.Sprintf("output %d:", i), colored),
			colorizeValue(output, colored),
		)
	}

	for _, address := range slices.Sorted(maps.Keys(result.Flows)) {
		flow := result.Flows[address]
		fmt.Fprintf(w, "%s %s put %s, taken %s\n",
			colorizeLabel("flow:", colored),
			address,
			flow.Put,
			flow.Taken,
		)
	}

	for _, address := range result.Created {
		fmt.Fprintf(w, "%s %s\n", colorizeLabel("created:", colored), address)
	}

	if receipt.Error != nil {
		fmt.Fprintln(w, colorizeError(
			fmt.Sprintf("%s [%s]", receipt.Error, result.Error.Kind),
			colored,
		))
	}
}
