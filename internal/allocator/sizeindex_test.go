package allocator

import "testing"

func newSizeNode(size uintptr) *sizeNode {
	h := &chunkHeader{tag: magic, size: size}
	h.sizeNode = sizeNode{key: size, owner: h}

	return &h.sizeNode
}

func TestSizeIndexFindBestFit(t *testing.T) {
	idx := &sizeIndex{}

	for _, sz := range []uintptr{64, 16, 128, 32, 256} {
		idx.insert(newSizeNode(sz))
	}

	t.Run("ExactMatch", func(t *testing.T) {
		n := idx.findBestFit(128)
		if n == nil || n.key != 128 {
			t.Fatalf("want key 128, got %+v", n)
		}
	})

	t.Run("RoundsUpToNextLarger", func(t *testing.T) {
		n := idx.findBestFit(100)
		if n == nil || n.key != 128 {
			t.Fatalf("want key 128, got %+v", n)
		}
	})

	t.Run("LargerThanAnyEntry", func(t *testing.T) {
		if n := idx.findBestFit(1000); n != nil {
			t.Fatalf("want no match, got %+v", n)
		}
	})

	t.Run("SmallestPossible", func(t *testing.T) {
		n := idx.findBestFit(1)
		if n == nil || n.key != 16 {
			t.Fatalf("want key 16, got %+v", n)
		}
	})
}

func TestSizeIndexBucketChaining(t *testing.T) {
	idx := &sizeIndex{}

	a := newSizeNode(64)
	b := newSizeNode(64)
	c := newSizeNode(64)

	idx.insert(a)
	idx.insert(b)
	idx.insert(c)

	if idx.root != a {
		t.Fatalf("tree shape should be unaffected by duplicate keys, root = %+v", idx.root)
	}

	if a.list != c || c.list != b || b.list != nil {
		t.Fatalf("expected LIFO bucket chain a->c->b, got a.list=%p c.list=%p b.list=%p", a.list, c.list, b.list)
	}

	best := idx.findBestFit(64)
	if best != a {
		t.Fatalf("best fit should return the bucket head, got %+v", best)
	}
}

func TestSizeIndexRemoveNonHeadChainMember(t *testing.T) {
	idx := &sizeIndex{}

	a := newSizeNode(64)
	b := newSizeNode(64)
	c := newSizeNode(64)

	idx.insert(a)
	idx.insert(b)
	idx.insert(c)

	if !idx.remove(c) {
		t.Fatal("remove of non-head chain member should succeed")
	}

	if idx.root != a || a.list != b || b.list != nil {
		t.Fatalf("tree structure should be untouched, chain should now be a->b, got root=%+v a.list=%p", idx.root, a.list)
	}
}

func TestSizeIndexRemoveBucketHeadPromotesChain(t *testing.T) {
	idx := &sizeIndex{}

	left := newSizeNode(32)
	a := newSizeNode(64)
	right := newSizeNode(96)
	b := newSizeNode(64)

	idx.insert(a)
	idx.insert(left)
	idx.insert(right)
	idx.insert(b)

	if !idx.remove(a) {
		t.Fatal("remove of bucket head should succeed")
	}

	if idx.root != b {
		t.Fatalf("b should have been promoted to bucket head and tree root, got %+v", idx.root)
	}

	if b.left != left || b.right != right {
		t.Fatalf("promoted head should inherit tree children: left=%+v right=%+v", b.left, b.right)
	}
}

func TestSizeIndexRemoveBucketHeadNoChildren(t *testing.T) {
	idx := &sizeIndex{}

	n := newSizeNode(64)
	idx.insert(n)

	if !idx.remove(n) {
		t.Fatal("remove should succeed")
	}

	if idx.root != nil {
		t.Fatalf("tree should be empty, got %+v", idx.root)
	}
}

func TestSizeIndexRemoveBucketHeadOneChild(t *testing.T) {
	idx := &sizeIndex{}

	n := newSizeNode(64)
	left := newSizeNode(32)

	idx.insert(n)
	idx.insert(left)

	if !idx.remove(n) {
		t.Fatal("remove should succeed")
	}

	if idx.root != left {
		t.Fatalf("left child should be promoted, got %+v", idx.root)
	}
}

func TestSizeIndexRemoveBucketHeadTwoChildren(t *testing.T) {
	idx := &sizeIndex{}

	for _, sz := range []uintptr{50, 25, 75, 10, 30, 60, 90, 55} {
		idx.insert(newSizeNode(sz))
	}

	target := idx.findBestFit(50)
	if target == nil || target.key != 50 {
		t.Fatalf("setup failed, got %+v", target)
	}

	if !idx.remove(target) {
		t.Fatal("remove should succeed")
	}

	// The corrected deletion grafts the outgoing node's right subtree
	// onto the rightmost descendant of its own left subtree; walking the
	// tree in order must yield every remaining key exactly once, sorted.
	var inorder []uintptr

	var walk func(n *sizeNode)

	walk = func(n *sizeNode) {
		if n == nil {
			return
		}

		walk(n.left)
		inorder = append(inorder, n.key)
		walk(n.right)
	}

	walk(idx.root)

	want := []uintptr{10, 25, 30, 55, 60, 75, 90}

	if len(inorder) != len(want) {
		t.Fatalf("got %v, want %v", inorder, want)
	}

	for i := range want {
		if inorder[i] != want[i] {
			t.Fatalf("got %v, want %v", inorder, want)
		}
	}
}

func TestSizeIndexRemoveIdentityNotValue(t *testing.T) {
	idx := &sizeIndex{}

	a := newSizeNode(64)
	b := newSizeNode(64)

	idx.insert(a)

	if idx.remove(b) {
		t.Fatal("remove must be identity-based: b was never inserted")
	}

	if !idx.remove(a) {
		t.Fatal("a should still be removable")
	}
}
