package main

import (
	"fmt"
	"strings"
	"time"
)

// renderDocumentJS replaces the current window's document with the
// reservation response so the page's own payment script can run against it.
const renderDocumentJS = `(html) => {
	document.open();
	document.write(html);
	document.close();
}`

const hasOrderFieldJS = `() => document.getElementsByName("ordr_idxx").length > 0`

// setPaymentFieldsJS fills the payment descriptors into the first form on
// the rendered reservation page, matching what the site's own checkout
// step would have entered.
const setPaymentFieldsJS = `(goodName, buyerName, amount) => {
	const form = document.forms && document.forms.length ? document.forms[0] : document.querySelector("form");
	if (form) {
		if (form.good_name) form.good_name.value = goodName;
		if (form.buyr_name) form.buyr_name.value = buyerName;
		if (form.good_mny) form.good_mny.value = amount;
	}
}`

// invokeGlobalJS probes one global payment function by name. "absent"
// moves the caller to the next strategy; a thrown error is fatal because
// the page tried to pay and failed.
const invokeGlobalJS = `(name) => {
	const fn = window[name];
	if (typeof fn !== "function") {
		return "absent";
	}
	try {
		fn();
		return "hit";
	} catch (err) {
		return "error:" + String(err);
	}
}`

// clickPaymentElementJS falls back to clicking the first element whose
// inline handler mentions payment. The page's markup is not ours, so this
// is a heuristic by necessity.
const clickPaymentElementJS = `() => {
	const clickable = Array.from(document.querySelectorAll("a,button,input[type='button'],input[type='submit']"));
	for (const el of clickable) {
		const handler = (el.getAttribute("onclick") || "").toLowerCase();
		if (handler.includes("pay") || handler.includes("payment")) {
			try {
				el.click();
				return "hit";
			} catch (err) {
				return "error:" + String(err);
			}
		}
	}
	return "absent";
}`

// Trigger outcomes reported to the summary.
const (
	TriggerFunctionInvoked = "function-invoked"
	TriggerElementClicked  = "element-clicked"
)

// triggerStrategy is one named probe for the page's payment affordance.
// Strategies run in declared order; the first that executes wins.
type triggerStrategy struct {
	name string
	tag  string
	js   string
	args []interface{}
}

var paymentTriggerStrategies = []triggerStrategy{
	{name: "fnPay", tag: TriggerFunctionInvoked, js: invokeGlobalJS, args: []interface{}{"fnPay"}},
	{name: "fn_pay", tag: TriggerFunctionInvoked, js: invokeGlobalJS, args: []interface{}{"fn_pay"}},
	{name: "pay", tag: TriggerFunctionInvoked, js: invokeGlobalJS, args: []interface{}{"pay"}},
	{name: "onclick-scan", tag: TriggerElementClicked, js: clickPaymentElementJS},
}

// RenderReservation writes the reservation HTML into the current window
// and waits (bounded) for the order-id field to appear. The wait failing
// is only a warning; the id was already extracted from the raw response.
func (o *Orchestrator) renderReservation(html string) error {
	timeout := o.requestTimeout()
	if _, err := o.session.Eval(timeout, renderDocumentJS, html); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		obj, err := o.session.Eval(timeout, hasOrderFieldJS)
		if err == nil && obj.Value.Bool() {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	fmt.Println("[WARN] 결제 준비 페이지 로드 대기 중 요소를 확인하지 못했습니다.")
	return nil
}

// injectPaymentFields sets good_name, buyr_name and good_mny on the
// rendered reservation form.
func (o *Orchestrator) injectPaymentFields(goodName, buyerName, amount string) error {
	_, err := o.session.Eval(o.requestTimeout(), setPaymentFieldsJS, goodName, buyerName, amount)
	return err
}

// triggerPayment walks the strategy list and returns the winning
// strategy's tag. No strategy matching is fatal: without a trigger there
// is nothing to pay with.
func (o *Orchestrator) triggerPayment() (string, error) {
	timeout := o.requestTimeout()
	for _, strategy := range paymentTriggerStrategies {
		obj, err := o.session.Eval(timeout, strategy.js, strategy.args...)
		if err != nil {
			return "", err
		}
		outcome := obj.Value.Str()
		switch {
		case outcome == "absent":
			continue
		case strings.HasPrefix(outcome, "error:"):
			return "", fmt.Errorf("failed to trigger payment flow via %s: %s", strategy.name, strings.TrimPrefix(outcome, "error:"))
		case outcome == "hit":
			o.logger.Debug("payment trigger fired", "strategy", strategy.name, "outcome", strategy.tag)
			return strategy.tag, nil
		}
	}
	return "", ErrTriggerNotFound
}
