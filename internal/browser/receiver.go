package browser

// receiverJS installs window.__postCompass. Elements are addressed by numeric
// handles so Go never holds remote object references across calls.
const receiverJS = `() => {
	if (window.__postCompass) return true;
	const nodes = new Map();
	let seq = 0;
	const get = (id) => {
		const el = nodes.get(id);
		if (!el || !el.isConnected) throw new Error('stale element ' + id);
		return el;
	};
	window.__postCompass = {
		query(sel) {
			const el = document.querySelector(sel);
			if (!el) return 0;
			seq += 1;
			nodes.set(seq, el);
			return seq;
		},
		isFormControl(id) {
			const el = get(id);
			return 'value' in el && !el.isContentEditable;
		},
		focus(id) { get(id).focus(); return true; },
		click(id) { get(id).click(); return true; },
		setValue(id, v) {
			const el = get(id);
			const desc = Object.getOwnPropertyDescriptor(Object.getPrototypeOf(el), 'value');
			if (desc && desc.set) desc.set.call(el, v); else el.value = v;
			return true;
		},
		setText(id, v) {
			const el = get(id);
			el.textContent = '';
			el.appendChild(document.createTextNode(v));
			return true;
		},
		setHTML(id, v) { get(id).innerHTML = v; return true; },
		dispatch(id, names) {
			const el = get(id);
			for (const n of names) {
				const ev = n.startsWith('key')
					? new KeyboardEvent(n, { bubbles: true })
					: new Event(n, { bubbles: true });
				el.dispatchEvent(ev);
			}
			return true;
		},
	};
	return true;
}`

// callJS invokes one receiver method. A missing receiver is reported as
// {missing: true} instead of throwing so it can be told apart from page errors.
const callJS = `(method, args) => {
	const r = window.__postCompass;
	if (!r) return { missing: true };
	try {
		return { value: r[method](...args) };
	} catch (e) {
		return { error: String(e && e.message || e) };
	}
}`

// toastJS shows a transient message in the page
const toastJS = `(message, ok) => {
	const el = document.createElement('div');
	el.className = 'postcompass-toast';
	el.textContent = message;
	Object.assign(el.style, {
		position: 'fixed', top: '20px', right: '20px', zIndex: '2147483647',
		padding: '12px 16px', borderRadius: '8px', maxWidth: '360px',
		font: '14px/1.4 -apple-system, BlinkMacSystemFont, sans-serif',
		color: '#fff', background: ok ? '#16a34a' : '#dc2626',
		boxShadow: '0 4px 12px rgba(0,0,0,.15)',
	});
	document.body.appendChild(el);
	setTimeout(() => el.remove(), 4000);
	return true;
}`

// dismissJS removes any toast still showing
const dismissJS = `() => {
	document.querySelectorAll('.postcompass-toast').forEach((el) => el.remove());
	return true;
}`
